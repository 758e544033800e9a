package utils

import (
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// restError unwraps a discordgo REST error.
func restError(err error) (*discordgo.RESTError, bool) {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr != nil {
		return restErr, true
	}
	return nil, false
}

// IsPermissionError reports whether Discord refused the call for lack of permission.
func IsPermissionError(err error) bool {
	restErr, ok := restError(err)
	if !ok {
		return false
	}
	if restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeMissingPermissions {
		return true
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden
}

// IsNotFound reports whether Discord answered 404 for the call.
func IsNotFound(err error) bool {
	restErr, ok := restError(err)
	return ok && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}
