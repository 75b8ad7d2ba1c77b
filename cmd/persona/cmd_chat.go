package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"persona-llm/internal/domain"
	"persona-llm/internal/service"
)

var chatCmd = &cobra.Command{
	Use:   "chat [persona-id]",
	Short: "Chat with a stored persona",
	Long: `Opens an interactive conversation. Replies are numbered so you can correct them:

  /evolve <n> <correction>   refine the persona from reply n and save it
  /quit                      leave the chat`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Cleanup()

		persona, err := c.Personas.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		session := c.Sessions.Open(persona)
		defer c.Sessions.Close(session.ID())

		return runChat(cmd, c.Personas, session, stdin)
	},
}

// chatView numera las respuestas del persona para poder referirlas con /evolve.
type chatView struct {
	out     io.Writer
	name    string
	replies []string
}

func (v *chatView) print(msg domain.ChatMessage) {
	switch {
	case msg.IsReply():
		v.replies = append(v.replies, msg.ID)
		fmt.Fprintf(v.out, "[%d] %s: %s\n", len(v.replies), v.name, msg.Text)
		if msg.Reflection != "" {
			conf := ""
			if msg.Confidence != nil {
				conf = fmt.Sprintf(" (confidence %d/10)", *msg.Confidence)
			}
			fmt.Fprintf(v.out, "    thinking: %s%s\n", msg.Reflection, conf)
		}
	case msg.Kind == domain.KindError:
		fmt.Fprintf(v.out, "!! %s\n", msg.Text)
	case msg.Kind == domain.KindSystem:
		fmt.Fprintf(v.out, "-- %s\n", msg.Text)
	}
}

func (v *chatView) replyID(n int) (string, bool) {
	if n < 1 || n > len(v.replies) {
		return "", false
	}
	return v.replies[n-1], true
}

func runChat(cmd *cobra.Command, personas *service.PersonaService, session *service.ChatSession, in *bufio.Reader) error {
	view := &chatView{out: cmd.OutOrStdout(), name: session.Profile().Name}
	for _, msg := range session.Transcript() {
		view.print(msg)
	}

	for {
		fmt.Fprint(view.out, "you> ")
		line, err := in.ReadString('\n')
		line = strings.TrimSpace(line)
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			return nil
		}

		if strings.HasPrefix(line, "/evolve") {
			n, correction, ok := parseEvolveCommand(line)
			if !ok {
				fmt.Fprintln(view.out, "usage: /evolve <reply number> <correction>")
				continue
			}
			id, ok := view.replyID(n)
			if !ok {
				fmt.Fprintf(view.out, "no reply numbered %d\n", n)
				continue
			}
			ctx, cancel := withTimeout(cmd)
			updated, err := personas.EvolveAndSave(ctx, session, id, correction)
			cancel()
			if err != nil {
				fmt.Fprintf(view.out, "!! could not update persona: %v\n", err)
				continue
			}
			view.name = updated.Profile.Name
			transcript := session.Transcript()
			view.print(transcript[len(transcript)-1])
			continue
		}

		ctx, cancel := withTimeout(cmd)
		msg, err := session.Send(ctx, line)
		cancel()
		if msg.ID != "" {
			view.print(msg)
		} else if err != nil {
			fmt.Fprintf(view.out, "!! %v\n", err)
		}
	}
}

// parseEvolveCommand interpreta "/evolve <n> <texto>".
func parseEvolveCommand(line string) (int, string, bool) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "/evolve"))
	numPart, correction, found := strings.Cut(rest, " ")
	if !found {
		return 0, "", false
	}
	n, err := strconv.Atoi(numPart)
	correction = strings.TrimSpace(correction)
	if err != nil || correction == "" {
		return 0, "", false
	}
	return n, correction, true
}
