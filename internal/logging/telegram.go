package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"shopify-asset-sync/internal/config"
)

type LoggerService interface {
	Log(value string)
	LogError(value string, err error)
	LogWarning(value string)
	LogSuccess(value string)
}

type telegramLogger struct {
	creds config.TelegramBotConfig
}

type telegramRequest struct {
	ChatId string `json:"chat_id"`
	Text   string `json:"text"`
}

const (
	iconInfo    = "ℹ️"
	iconError   = "❌"
	iconWarning = "⚠️"
	iconSuccess = "✅"
)

// NewLogger returns a Telegram-backed logger when bot credentials are
// configured, otherwise a stdout logger so batch jobs always have output.
func NewLogger(cfg config.TelegramBotConfig) LoggerService {
	if cfg.ChatId == "" || cfg.Token == "" {
		log.Println("[WARNING]: telegram credentials missing, logging to stdout")
		return &stdoutLogger{}
	}
	return &telegramLogger{creds: cfg}
}

func (c *telegramLogger) Log(value string) {
	_ = c.sendRequest(formatMessage(iconInfo, "INFO", value))
}

func (c *telegramLogger) LogError(value string, err error) {
	if err != nil {
		value = fmt.Sprintf("%s: %v", value, err)
	}
	_ = c.sendRequest(formatMessage(iconError, "ERROR", value))
}

func (c *telegramLogger) LogWarning(value string) {
	_ = c.sendRequest(formatMessage(iconWarning, "WARNING", value))
}

func (c *telegramLogger) LogSuccess(value string) {
	_ = c.sendRequest(formatMessage(iconSuccess, "SUCCESS", value))
}

func formatMessage(icon, level, value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		v = "-"
	}
	return fmt.Sprintf("%s %s: %s", icon, level, v)
}

func (c *telegramLogger) sendRequest(value string) error {
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", c.creds.Token)

	reqBody := telegramRequest{
		ChatId: c.creds.ChatId,
		Text:   value,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("telegram send failed: %s\n%s\n", resp.Status, string(respBody))
		return fmt.Errorf("telegram send failed: %s", resp.Status)
	}
	return nil
}

type stdoutLogger struct{}

func (s *stdoutLogger) Log(value string) { log.Printf("[INFO] %s", value) }

func (s *stdoutLogger) LogError(value string, err error) {
	if err != nil {
		log.Printf("[ERROR] %s: %v", value, err)
		return
	}
	log.Printf("[ERROR] %s", value)
}

func (s *stdoutLogger) LogWarning(value string) { log.Printf("[WARNING] %s", value) }

func (s *stdoutLogger) LogSuccess(value string) { log.Printf("[SUCCESS] %s", value) }
