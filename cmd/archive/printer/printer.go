// Package printer writes transcript messages for the line-oriented commands.
package printer

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/papercomputeco/archiveai/pkg/conversation"
)

var (
	userLabel      = color.New(color.FgGreen, color.Bold)
	assistantLabel = color.New(color.FgCyan, color.Bold)
	systemLine     = color.New(color.FgGreen)
	errorLine      = color.New(color.FgRed)
)

// Print writes msg as a single transcript entry.
func Print(w io.Writer, msg conversation.Message) {
	switch msg.Kind {
	case conversation.KindUser:
		userLabel.Fprint(w, "You: ")
		fmt.Fprintln(w, msg.Content)
	case conversation.KindAssistant:
		assistantLabel.Fprint(w, "Assistant: ")
		fmt.Fprintln(w, msg.Content)
	case conversation.KindSystem:
		systemLine.Fprintln(w, msg.Content)
	default:
		errorLine.Fprintln(w, msg.Content)
	}
}

// PrintAll writes every message in msgs, in order.
func PrintAll(w io.Writer, msgs []conversation.Message) {
	for _, msg := range msgs {
		Print(w, msg)
	}
}
