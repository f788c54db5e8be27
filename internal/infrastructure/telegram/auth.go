package telegram

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/auth/qrlogin"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/rs/zerolog"
	"rsc.io/qr"
)

const inputTimeout = 2 * time.Minute

// Authenticator logs the client in when the stored session is missing or revoked
type Authenticator interface {
	Authenticate(ctx context.Context, client *telegram.Client) error
}

// LineReader reads a single answer from the operator
type LineReader interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
}

// ConsoleReader implements LineReader using stdin
type ConsoleReader struct {
	in  io.Reader
	out io.Writer
}

// NewConsoleReader creates a reader bound to the process terminal
func NewConsoleReader() *ConsoleReader {
	return &ConsoleReader{in: os.Stdin, out: os.Stdout}
}

// ReadLine prompts and waits for one line of input with timeout
func (r *ConsoleReader) ReadLine(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)

	lineChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		line, err := bufio.NewReader(r.in).ReadString('\n')
		if err != nil {
			errChan <- fmt.Errorf("failed to read input: %w", err)
			return
		}
		lineChan <- strings.TrimSpace(line)
	}()

	select {
	case line := <-lineChan:
		return line, nil
	case err := <-errChan:
		return "", err
	case <-ctx.Done():
		return "", fmt.Errorf("input cancelled: %w", ctx.Err())
	case <-time.After(inputTimeout):
		return "", fmt.Errorf("input timeout")
	}
}

// PhoneAuthenticator signs in with a phone number, login code and optional 2FA password
type PhoneAuthenticator struct {
	phone      string
	input      LineReader
	maxRetries int
	logger     zerolog.Logger
}

// NewPhoneAuthenticator creates a phone based authenticator
func NewPhoneAuthenticator(phone string, input LineReader, logger zerolog.Logger) *PhoneAuthenticator {
	return &PhoneAuthenticator{
		phone:      phone,
		input:      input,
		maxRetries: 3,
		logger:     logger.With().Str("component", "phone_auth").Str("phone", maskPhone(phone)).Logger(),
	}
}

// Authenticate performs the login flow with backoff for flood waits and wrong codes
func (a *PhoneAuthenticator) Authenticate(ctx context.Context, client *telegram.Client) error {
	var lastErr error
	baseDelay := time.Second

	for attempt := 0; attempt < a.maxRetries; attempt++ {
		err := a.signIn(ctx, client)
		if err == nil {
			return nil
		}
		lastErr = err

		if isNonRetryableError(err) {
			return fmt.Errorf("authentication failed with non-retryable error: %w", err)
		}

		delay := baseDelay * (1 << attempt)
		if wait, ok := tgerr.AsFloodWait(err); ok {
			delay = wait
		} else if tgerr.Is(err, "PHONE_CODE_INVALID") {
			a.logger.Warn().Msg("invalid login code, please try again")
			continue
		}

		a.logger.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Dur("retry_delay", delay).
			Msg("authentication failed, retrying")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("authentication failed after %d attempts: %w", a.maxRetries, lastErr)
}

func (a *PhoneAuthenticator) signIn(ctx context.Context, client *telegram.Client) error {
	flow := auth.NewFlow(
		auth.Constant(
			a.phone,
			"",
			auth.CodeAuthenticatorFunc(func(ctx context.Context, sentCode *tg.AuthSentCode) (string, error) {
				a.logger.Info().Msg("login code has been sent")
				return a.input.ReadLine(ctx, "Enter login code: ")
			}),
		),
		auth.SendCodeOptions{},
	)

	err := client.Auth().IfNecessary(ctx, flow)
	if tgerr.Is(err, "SESSION_PASSWORD_NEEDED") {
		return submitPassword(ctx, client, a.input)
	}
	return err
}

// QRAuthenticator signs in by scanning a login QR code from an authorized device
type QRAuthenticator struct {
	loggedIn <-chan struct{}
	input    LineReader
	out      io.Writer
	logger   zerolog.Logger
}

// NewQRAuthenticator creates a QR authenticator.
// loggedIn must come from qrlogin.OnLoginToken on the client's dispatcher.
func NewQRAuthenticator(loggedIn <-chan struct{}, input LineReader, out io.Writer, logger zerolog.Logger) *QRAuthenticator {
	return &QRAuthenticator{
		loggedIn: loggedIn,
		input:    input,
		out:      out,
		logger:   logger.With().Str("component", "qr_auth").Logger(),
	}
}

// Authenticate shows rotating QR tokens until one is accepted
func (a *QRAuthenticator) Authenticate(ctx context.Context, client *telegram.Client) error {
	_, err := client.QR().Auth(ctx, a.loggedIn, func(ctx context.Context, token qrlogin.Token) error {
		code, err := renderQR(token.URL())
		if err != nil {
			return err
		}

		fmt.Fprintf(a.out, "\nScan with Telegram: Settings > Devices > Link Desktop Device\n%s\nExpires at %s\n",
			code, token.Expires().Format(time.TimeOnly))
		a.logger.Info().Time("expires", token.Expires()).Msg("login QR code displayed")
		return nil
	})

	if tgerr.Is(err, "SESSION_PASSWORD_NEEDED") {
		return submitPassword(ctx, client, a.input)
	}
	if err != nil {
		return fmt.Errorf("qr login failed: %w", err)
	}
	return nil
}

func submitPassword(ctx context.Context, client *telegram.Client, input LineReader) error {
	password, err := input.ReadLine(ctx, "Enter 2FA password: ")
	if err != nil {
		return fmt.Errorf("failed to get 2FA password: %w", err)
	}

	if _, err := client.Auth().Password(ctx, password); err != nil {
		return fmt.Errorf("2FA authentication failed: %w", err)
	}
	return nil
}

// renderQR draws a QR code with half block characters, two modules per line
func renderQR(content string) (string, error) {
	code, err := qr.Encode(content, qr.L)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}

	const quiet = 2
	black := func(x, y int) bool {
		x, y = x-quiet, y-quiet
		if x < 0 || y < 0 || x >= code.Size || y >= code.Size {
			return false
		}
		return code.Black(x, y)
	}

	var sb strings.Builder
	size := code.Size + 2*quiet
	for y := 0; y < size; y += 2 {
		for x := 0; x < size; x++ {
			top, bottom := black(x, y), black(x, y+1)
			switch {
			case top && bottom:
				sb.WriteString(" ")
			case top:
				sb.WriteString("▄")
			case bottom:
				sb.WriteString("▀")
			default:
				sb.WriteString("█")
			}
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// isNonRetryableError checks if an error should fail the login immediately
func isNonRetryableError(err error) bool {
	nonRetryableErrors := []string{
		"PHONE_NUMBER_BANNED",
		"PHONE_NUMBER_INVALID",
		"API_ID_INVALID",
		"API_ID_PUBLISHED_FLOOD",
		"AUTH_TOKEN_INVALID",
		"PASSWORD_HASH_INVALID",
	}

	for _, nonRetryable := range nonRetryableErrors {
		if tgerr.Is(err, nonRetryable) {
			return true
		}
	}
	return false
}

// maskPhone keeps the country prefix and the last four digits of a phone number
func maskPhone(phone string) string {
	if len(phone) <= 6 {
		return "****"
	}
	return phone[:3] + strings.Repeat("*", len(phone)-7) + phone[len(phone)-4:]
}
