package cli

import (
	"bufio"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dwizi/quantumx/internal/chatclient"
	"github.com/dwizi/quantumx/internal/chaterr"
	"github.com/dwizi/quantumx/internal/config"
)

const botLabel = "quantumx> "

func newChatCommand(logger *slog.Logger) *cobra.Command {
	var (
		serverURL  string
		imageMode  bool
		imageOut   string
		timeoutSec int
	)

	if logger == nil {
		logger = slog.Default()
	}
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to a running QuantumX server",
		Long:  "Send one message, or start an interactive session when no message is given. Type /image to toggle image mode and /exit to quit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			if strings.TrimSpace(serverURL) != "" {
				cfg.ServerURL = serverURL
			}
			client, err := chatclient.New(cfg)
			if err != nil {
				return err
			}
			client = client.WithTimeout(boundedTimeout(timeoutSec))
			session := &chatSession{
				cmd:      cmd,
				client:   client,
				theme:    newTheme(),
				logger:   logger,
				imageOut: imageOut,
				mode:     "text",
			}
			if imageMode {
				session.mode = "image"
			}

			text := strings.TrimSpace(strings.Join(args, " "))
			if text != "" {
				return session.send(cmd.Context(), text)
			}

			cmd.Println(session.theme.subtle.Render(fmt.Sprintf("Connected to %s. Type /image to toggle image mode, /exit to quit.", cfg.ServerURL)))
			return session.loop()
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", "", "server URL (defaults to QUANTUMX_SERVER_URL)")
	cmd.Flags().BoolVar(&imageMode, "image", false, "ask for an image instead of text")
	cmd.Flags().StringVar(&imageOut, "image-out", "quantumx.png", "where to write generated images")
	cmd.Flags().IntVar(&timeoutSec, "timeout-sec", 120, "request timeout in seconds")

	cmd.AddCommand(newChatEvalCommand())
	return cmd
}

type chatSession struct {
	cmd      *cobra.Command
	client   *chatclient.Client
	theme    theme
	logger   *slog.Logger
	imageOut string
	mode     string
}

func (s *chatSession) loop() error {
	scanner := bufio.NewScanner(s.cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		s.cmd.Print(s.theme.prompt.Render("you> "))
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		switch text {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		case "/image":
			if s.mode == "image" {
				s.mode = "text"
			} else {
				s.mode = "image"
			}
			s.cmd.Println(s.theme.subtle.Render("mode: " + s.mode))
			continue
		}
		if err := s.send(s.cmd.Context(), text); err != nil {
			s.cmd.PrintErrln(s.theme.errorText.Render("chat request failed: " + err.Error()))
		}
	}
	return scanner.Err()
}

func (s *chatSession) send(ctx context.Context, text string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	reply, err := s.client.Chat(ctx, text, s.mode)
	if err != nil {
		if errors.Is(err, chaterr.ErrEmptyMessage) {
			s.cmd.PrintErrln(s.theme.errorText.Render(err.Error()))
			return nil
		}
		return err
	}
	printBotReply(s.cmd, s.theme, reply.Response)
	if reply.ImageBase64 != nil {
		if err := s.saveImage(*reply.ImageBase64); err != nil {
			return err
		}
	}
	return nil
}

func (s *chatSession) saveImage(encoded string) error {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	if err := os.WriteFile(s.imageOut, data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	s.logger.Debug("image saved", "path", s.imageOut, "bytes", len(data))
	s.cmd.Println(s.theme.imageNote.Render(fmt.Sprintf("image saved to %s (%d bytes)", s.imageOut, len(data))))
	return nil
}

func printBotReply(cmd *cobra.Command, th theme, reply string) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		cmd.Println(th.botLabel.Render(botLabel) + th.subtle.Render("(no reply)"))
		return
	}
	indent := strings.Repeat(" ", len(botLabel))
	for index, line := range strings.Split(reply, "\n") {
		line = strings.TrimRight(line, "\r")
		if index == 0 {
			cmd.Println(th.botLabel.Render(botLabel) + th.botText.Render(line))
			continue
		}
		cmd.Println(indent + th.botText.Render(line))
	}
}

func boundedTimeout(input int) time.Duration {
	if input < 1 {
		input = 120
	}
	if input > 600 {
		input = 600
	}
	return time.Duration(input) * time.Second
}
