package response

import "github.com/gin-gonic/gin"

// Every endpoint answers with a {success, message, ...} envelope. The
// client keys off the success flag, never the HTTP status alone.

// OK writes a success envelope merged with the given payload fields.
func OK(c *gin.Context, code int, message string, fields gin.H) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(code, body)
}

// Fail writes a failure envelope with a user-safe message. Raw upstream
// error bodies never travel through here.
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "message": message})
}
