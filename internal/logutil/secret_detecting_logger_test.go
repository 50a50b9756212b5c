package logutil

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"
)

func TestSecretDetectingLoggerPanicsOnDetectedSecret(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(InfoLevel, &buf, "")
	logger := NewSecretDetectingLogger(base)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic when a secret pattern is logged")
		}
		if !strings.Contains(r.(string), "SECURITY VIOLATION") {
			t.Errorf("expected panic message to flag a security violation, got: %v", r)
		}
	}()

	logger.Info("using api key key-abcdefghijklmnopqrst1234")
}

func TestSecretDetectingLoggerCollectsInsteadOfPanicking(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(InfoLevel, &buf, "")
	logger := NewSecretDetectingLogger(base)
	logger.SetFailOnSecretDetect(false)

	logger.Info("token: Bearer abcdefghijklmnopqrstuvwxyz012345")
	logger.Info("safe message with no secrets")

	if !logger.HasDetectedSecrets() {
		t.Fatal("expected HasDetectedSecrets to be true after a Bearer token was logged")
	}
	detected := logger.GetDetectedSecrets()
	if len(detected) != 1 {
		t.Fatalf("expected exactly 1 detected secret, got %d", len(detected))
	}

	logger.ClearDetectedSecrets()
	if logger.HasDetectedSecrets() {
		t.Error("expected ClearDetectedSecrets to reset detection state")
	}
}

func TestSecretDetectingLoggerCustomPatterns(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(InfoLevel, &buf, "")
	logger := NewSecretDetectingLogger(base)
	logger.SetFailOnSecretDetect(false)

	logger.AddPattern(SecretPattern{
		Name:  "Internal Token",
		Regex: regexp.MustCompile(`internal-tok-\d+`),
	})

	logger.Info("using internal-tok-55512")
	if !logger.HasDetectedSecrets() {
		t.Error("expected custom pattern to be detected")
	}
}

func TestSecretDetectingLoggerWithContextPreservesDelegate(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(InfoLevel, &buf, "")
	logger := NewSecretDetectingLogger(base)
	logger.SetFailOnSecretDetect(false)

	ctx := WithCustomCorrelationID(context.Background(), "req-9")
	derived := logger.WithContext(ctx)

	derived.InfoContext(ctx, "safe message")
	if !strings.Contains(buf.String(), "safe message") {
		t.Errorf("expected delegate to receive the message, got: %s", buf.String())
	}
}

func TestDefaultSecretPatternsMatchCommonFormats(t *testing.T) {
	cases := map[string]string{
		"OpenAI API Key": "sk-" + strings.Repeat("a", 48),
		"Google API Key": "AIza" + strings.Repeat("B", 35),
		"Basic Auth":     "Basic " + strings.Repeat("c", 12),
	}
	for name, sample := range cases {
		var found bool
		for _, pattern := range DefaultSecretPatterns {
			if pattern.Name == name && pattern.Regex.MatchString(sample) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected pattern %q to match sample %q", name, sample)
		}
	}
}
