package discord

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bluesky-social/hallmonitor/automod/commands"
	"github.com/bluesky-social/hallmonitor/automod/engine"

	"github.com/bwmarrin/discordgo"
)

// Maps discord REST errors on to package sentinels: 403 wraps engine.ErrForbidden, 404 wraps commands.ErrNotFound.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Response == nil {
		return err
	}
	msg := ""
	if restErr.Message != nil {
		msg = restErr.Message.Message
	}
	switch restErr.Response.StatusCode {
	case http.StatusForbidden:
		return fmt.Errorf("discord: %w: %s", engine.ErrForbidden, msg)
	case http.StatusNotFound:
		return fmt.Errorf("discord: %w: %s", commands.ErrNotFound, msg)
	}
	return err
}
