// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for aira.
//
// Configuration is read from ~/.aira/config.toml with sensible defaults
// and AIRA_* environment variable overrides. Every knob has a default;
// a missing config file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// DEFAULT PROMPTS
// =============================================================================

// DefaultSystemPrompt is the persona used for typed chat.
const DefaultSystemPrompt = `You are a friendly, helpful AI assistant named "Aira" who chats like a good friend.

Be warm, conversational, and relatable. Use a mix of shorter and longer messages like humans do.
Show personality, humor, and empathy in your responses. Ask follow-up questions when appropriate to maintain a natural conversation flow.

Feel free to use casual language, contractions (like "I'm" instead of "I am"), and the occasional exclamation when it feels natural! Vary your tone based on the topic - be enthusiastic about exciting things and compassionate about serious matters.

Remember personal details the user has shared and refer back to them in relevant contexts. If you're unsure about something, it's perfectly fine to admit that - friends are honest with each other.

Most importantly, be yourself - a thoughtful, engaging conversation partner who genuinely wants to help.`

// DefaultVoiceSystemPrompt is the persona used for voice conversations.
// It differs from the chat prompt: replies are spoken aloud, so the model
// is steered away from anything a TTS engine would mangle.
const DefaultVoiceSystemPrompt = `You are a voice assistant named "Aira" with a distinct personality: sassy, friendly, sarcastic, and funny.

CRITICAL RULES:
- NEVER use ANY emojis. This is absolutely forbidden! The TTS system cannot handle them.
- Do NOT include ANY timing instructions like <break> or similar tags.
- Use ONLY plain text with standard punctuation.
- NEVER add extra spaces at the end of your responses.
- Do not put any special characters that would not be naturally spoken.
- Remember, you are a voice assistant. Your responses must sound natural and conversational when spoken aloud, not like written text.
- Your primary language is English. You may respond in other languages only if the user specifically requests it, but keep such instances to a minimum.
- If the user's pronunciation is unclear, use context from the last two exchanges and consider similar-sounding words to accurately interpret their intent.

PERSONALITY:
- Be sassy, friendly, sarcastic, and funny in your responses.
- Use wit and humor appropriately based on the user's mood.
- Be conversational but professional.

ADAPTABILITY:
- Analyze the user's mood from their words.
- If they seem SERIOUS: Be attentive and straightforward.
- If they seem SAD: Show empathy, listen actively.
- If they seem EXCITED: Match their energy.
- If they seem CONFUSED: Be patient and clear.
- If they seem FRUSTRATED: Acknowledge their feelings.

CONVERSATION FORMAT:
- Use natural paragraph breaks to organize your thoughts.
- Keep sentences concise but varied in length for natural speech flow.
- Use punctuation correctly to help the TTS system add appropriate pauses.

Remember: NO emojis, NO special characters, NO asterisks, NO timing tags, ONLY plain text with proper punctuation.`

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete aira configuration.
type Config struct {
	API     APIConfig     `toml:"api"`
	Chat    ChatConfig    `toml:"chat"`
	Voice   VoiceConfig   `toml:"voice"`
	Storage StorageConfig `toml:"storage"`
}

// APIConfig contains Groq endpoint configuration.
type APIConfig struct {
	// BaseURL is the OpenAI-compatible API root.
	BaseURL string `toml:"base_url"`
	// ChatModel is the model used for conversation completions.
	ChatModel string `toml:"chat_model"`
	// ProbeModel is the cheap model used to verify a candidate API key.
	ProbeModel string `toml:"probe_model"`
	// TranscribeModel is the Whisper model used for voice transcription.
	TranscribeModel string `toml:"transcribe_model"`
	// Temperature for chat completions.
	Temperature float64 `toml:"temperature"`
	// MaxTokens caps each completion.
	MaxTokens int `toml:"max_tokens"`
	// TimeoutSecs bounds every request; the upstream behavior left this to
	// HTTP client defaults, which would hang indefinitely on a dead link.
	TimeoutSecs int `toml:"timeout_secs"`
}

// ChatConfig contains typed-chat configuration.
type ChatConfig struct {
	// SystemPrompt is the persona prepended to every completion request.
	SystemPrompt string `toml:"system_prompt"`
}

// VoiceConfig contains voice-mode configuration.
type VoiceConfig struct {
	// SystemPrompt is the voice persona (TTS-safe output rules).
	SystemPrompt string `toml:"system_prompt"`
	// RecorderCommand is the capture binary (default "ffmpeg").
	RecorderCommand string `toml:"recorder_command"`
	// InputFormat is the ffmpeg input device family ("pulse", "alsa",
	// "avfoundation"); empty selects a platform default.
	InputFormat string `toml:"input_format"`
	// InputDevice is the capture device name (default "default").
	InputDevice string `toml:"input_device"`
	// SampleRate of the recording in Hz.
	SampleRate int `toml:"sample_rate"`
	// MinRecordingBytes below which a recording is rejected as failed.
	MinRecordingBytes int64 `toml:"min_recording_bytes"`
	// SpeechCommand is the TTS binary ("say", "espeak"); empty selects a
	// platform default. Voice mode still works without one.
	SpeechCommand string `toml:"speech_command"`
}

// StorageConfig contains persistence paths. Empty values select the
// defaults under ~/.aira.
type StorageConfig struct {
	DatabasePath   string `toml:"database_path"`
	CredentialPath string `toml:"credential_path"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:         "https://api.groq.com/openai/v1",
			ChatModel:       "gemma2-9b-it",
			ProbeModel:      "llama3-8b-8192",
			TranscribeModel: "whisper-large-v3",
			Temperature:     0.8,
			MaxTokens:       1024,
			TimeoutSecs:     60,
		},
		Chat: ChatConfig{
			SystemPrompt: DefaultSystemPrompt,
		},
		Voice: VoiceConfig{
			SystemPrompt:      DefaultVoiceSystemPrompt,
			RecorderCommand:   "ffmpeg",
			InputDevice:       "default",
			SampleRate:        22050,
			MinRecordingBytes: 1000,
		},
		Storage: StorageConfig{},
	}
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c.API.TimeoutSecs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.API.TimeoutSecs) * time.Second
}

// =============================================================================
// PATHS
// =============================================================================

// Dir returns the aira configuration directory (~/.aira).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".aira"), nil
}

// Path returns the config file location (~/.aira/config.toml).
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads configuration from the default path, falling back to
// defaults when the file is absent. Environment overrides apply last.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		cfg := Default()
		cfg.applyEnvOverrides()
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath reads configuration from a specific file. A missing file
// yields defaults; a malformed file is an error.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies AIRA_* environment variables on top of the
// loaded configuration.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("AIRA_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("AIRA_CHAT_MODEL"); v != "" {
		c.API.ChatModel = v
	}
	if v := os.Getenv("AIRA_TRANSCRIBE_MODEL"); v != "" {
		c.API.TranscribeModel = v
	}
	if v := os.Getenv("AIRA_TIMEOUT_SECS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.API.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("AIRA_DATABASE_PATH"); v != "" {
		c.Storage.DatabasePath = v
	}
}

// Validate rejects values that would produce nonsense at runtime.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	if c.API.ChatModel == "" {
		return fmt.Errorf("api.chat_model must not be empty")
	}
	if c.API.Temperature < 0 || c.API.Temperature > 2 {
		return fmt.Errorf("api.temperature %v out of range [0, 2]", c.API.Temperature)
	}
	if c.API.MaxTokens <= 0 {
		return fmt.Errorf("api.max_tokens must be positive")
	}
	if c.Voice.SampleRate <= 0 {
		return fmt.Errorf("voice.sample_rate must be positive")
	}
	if c.Voice.MinRecordingBytes < 0 {
		return fmt.Errorf("voice.min_recording_bytes must not be negative")
	}
	return nil
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	globalConfigOnce.Do(func() {})
}

// ResetGlobalForTesting resets the global config state between tests.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
