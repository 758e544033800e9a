package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	forbidden := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusForbidden}}
	missingPerms := &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusBadRequest},
		Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeMissingPermissions},
	}
	notFound := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}}

	assert.True(t, IsPermissionError(forbidden))
	assert.True(t, IsPermissionError(missingPerms))
	assert.True(t, IsPermissionError(fmt.Errorf("move member: %w", forbidden)))
	assert.False(t, IsPermissionError(notFound))
	assert.False(t, IsPermissionError(errors.New("boom")))
	assert.False(t, IsPermissionError(nil))

	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(forbidden))
}
