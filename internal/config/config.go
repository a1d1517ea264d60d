// Package config loads, validates, and persists the worker's on-disk
// configuration: coordinator URL, worker identity, scene/output directories,
// disk and workload limits, and the Independent/Server mode switch.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Mode selects whether the worker runs standalone (HTTP to a coordinator,
// owns its directories) or co-located on the coordinator's filesystem.
type Mode string

const (
	Independent Mode = "Independent"
	Server      Mode = "Server"
)

// Config is the worker's validated, immutable-after-load configuration
// snapshot, per the persisted key-value options of §6.2.
type Config struct {
	BenderURL        string
	ID               string
	BlendPath        string
	OutPath          string
	DiskLimit        uint64
	Workload         int
	GracePeriodSecs  int64
	Mode             Mode
	HeartRateSeconds int64
	BrokerURL        string
}

const (
	defaultDiskLimit        = 10 * 1024 * 1024 * 1024 // 10 GiB
	defaultWorkload         = 1
	defaultGracePeriodSecs  = 3600
	defaultHeartRateSeconds = 60
	// defaultBrokerURL matches the reference implementation's hardcoded
	// local broker address; not one of the persisted §6.2 fields, but
	// needed to actually dial a broker, so it gets a default and an
	// env/YAML override like everything else.
	defaultBrokerURL = "amqp://localhost//"
)

// fieldNames lists every key a persisted config must carry; Load uses this
// to detect a config missing a field added by a later version of the
// worker.
var fieldNames = []string{
	"bender_url", "id", "blendpath", "outpath", "disklimit",
	"workload", "grace_period", "mode", "heart_rate_seconds",
}

// DefaultPath returns the per-OS default config file path, mirroring the
// reference org's convention of a dotfile in the user's home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".bender-worker.yaml")
}

// Prompter asks the operator a single question on stdin/stdout, returning
// their raw answer. Tests substitute a canned io.Reader/io.Writer pair
// instead of a new interactive-prompt dependency (see DESIGN.md).
type Prompter struct {
	In  io.Reader
	Out io.Writer

	scanner *bufio.Scanner
}

// NewPrompter returns a Prompter wired to os.Stdin/os.Stdout.
func NewPrompter() *Prompter {
	return &Prompter{In: os.Stdin, Out: os.Stdout}
}

// Ask prompts question, showing defaultVal as the suggested answer, and
// returns the trimmed response (or defaultVal on empty input/EOF).
func (p *Prompter) Ask(question, defaultVal string) string {
	return p.ask(question, defaultVal)
}

// Confirm asks a yes/no question, defaulting to no on empty or unparsable
// input.
func (p *Prompter) Confirm(question string) bool {
	return p.confirm(question)
}

func (p *Prompter) ask(question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(p.Out, "%s [%s]: ", question, defaultVal)
	} else {
		fmt.Fprintf(p.Out, "%s: ", question)
	}
	scanner := p.lines()
	if !scanner.Scan() {
		return defaultVal
	}
	answer := strings.TrimSpace(scanner.Text())
	if answer == "" {
		return defaultVal
	}
	return answer
}

// confirm asks a yes/no question, defaulting to no on empty/unparsable input.
func (p *Prompter) confirm(question string) bool {
	fmt.Fprintf(p.Out, "%s [y/N]: ", question)
	scanner := p.lines()
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

// lines returns the one scanner shared by every question, so input buffered
// past the current answer is kept for the next question.
func (p *Prompter) lines() *bufio.Scanner {
	if p.scanner == nil {
		p.scanner = bufio.NewScanner(p.In)
	}
	return p.scanner
}

// Loader loads, validates, and persists Config using viper, binding
// BENDERSERVER and the WORKER_ environment prefix over the on-disk YAML.
type Loader struct {
	v    *viper.Viper
	path string
}

// NewLoader returns a Loader reading/writing the YAML file at path.
func NewLoader(path string) *Loader {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("WORKER")
	v.AutomaticEnv()

	v.SetDefault("disklimit", defaultDiskLimit)
	v.SetDefault("workload", defaultWorkload)
	v.SetDefault("grace_period", defaultGracePeriodSecs)
	v.SetDefault("heart_rate_seconds", defaultHeartRateSeconds)
	v.SetDefault("mode", string(Independent))
	v.SetDefault("broker_url", defaultBrokerURL)

	return &Loader{v: v, path: path}
}

// Load reads the config file at l.path. If it is missing entirely, it runs
// the interactive first-run dialog via prompt and persists the result. If it
// exists but is missing a recognized field, prompt is asked whether to
// regenerate; declining is a fatal configuration defect (§7).
func (l *Loader) Load(prompt *Prompter) (*Config, error) {
	if _, statErr := os.Stat(l.path); statErr != nil {
		if !os.IsNotExist(statErr) {
			return nil, errors.Wrapf(statErr, "config: statting %s", l.path)
		}
		cfg := l.firstRun(prompt)
		if err := l.Save(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if err := l.v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "config: reading %s", l.path)
	}

	if os.Getenv("BENDERSERVER") != "" {
		l.v.Set("mode", string(Server))
	}

	missing := l.missingFields()
	if len(missing) > 0 {
		msg := fmt.Sprintf("config file %s is missing field(s) %s; regenerate now?", l.path, strings.Join(missing, ", "))
		if !prompt.confirm(msg) {
			return nil, errors.Errorf("config: declined to regenerate config missing %s", strings.Join(missing, ", "))
		}
		cfg := l.firstRun(prompt)
		if err := l.Save(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	return l.snapshot(), nil
}

// Reconfigure unconditionally runs the interactive dialog (preserving the
// existing worker id if a config file is already present) and persists the
// result, for `worker --configure`.
func (l *Loader) Reconfigure(prompt *Prompter) (*Config, error) {
	if _, statErr := os.Stat(l.path); statErr == nil {
		if err := l.v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "config: reading %s", l.path)
		}
	}
	cfg := l.firstRun(prompt)
	if err := l.Save(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// missingFields reports which recognized fields are absent from the loaded
// config. Fields carrying a viper default (disklimit, workload, grace_period,
// mode, heart_rate_seconds) are never reported missing, since IsSet is true
// once a default exists; only bender_url/id/blendpath/outpath have no
// default and can actually trigger regeneration.
func (l *Loader) missingFields() []string {
	var missing []string
	for _, name := range fieldNames {
		if !l.v.IsSet(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// firstRun asks for blendpath, outpath and bender_url interactively, each
// offering a default; every other field takes its default. An id already present (re-running --configure
// against an existing file) is kept rather than regenerated, since worker
// identity must stay stable across reconfiguration.
func (l *Loader) firstRun(prompt *Prompter) *Config {
	id := l.v.GetString("id")
	if id == "" {
		id = uuid.NewString()
	}

	blendDefault := l.v.GetString("blendpath")
	if blendDefault == "" {
		blendDefault = filepath.Join(".", "blend")
	}
	outDefault := l.v.GetString("outpath")
	if outDefault == "" {
		outDefault = filepath.Join(".", "out")
	}
	urlDefault := l.v.GetString("bender_url")
	if urlDefault == "" {
		urlDefault = "http://localhost:8000"
	}

	blendpath := prompt.ask("Scene file directory (blendpath)", blendDefault)
	outpath := prompt.ask("Frame output directory (outpath)", outDefault)
	benderURL := prompt.ask("Coordinator base URL (bender_url)", urlDefault)

	mode := Independent
	if os.Getenv("BENDERSERVER") != "" {
		mode = Server
	}

	l.v.Set("id", id)
	l.v.Set("bender_url", benderURL)
	l.v.Set("blendpath", blendpath)
	l.v.Set("outpath", outpath)
	l.v.Set("mode", string(mode))

	return l.snapshot()
}

func (l *Loader) snapshot() *Config {
	return &Config{
		BenderURL:        l.v.GetString("bender_url"),
		ID:               l.v.GetString("id"),
		BlendPath:        l.v.GetString("blendpath"),
		OutPath:          l.v.GetString("outpath"),
		DiskLimit:        l.v.GetUint64("disklimit"),
		Workload:         l.v.GetInt("workload"),
		GracePeriodSecs:  l.v.GetInt64("grace_period"),
		Mode:             Mode(l.v.GetString("mode")),
		HeartRateSeconds: l.v.GetInt64("heart_rate_seconds"),
		BrokerURL:        l.v.GetString("broker_url"),
	}
}

// Save persists cfg to l.path as YAML, creating parent directories as
// needed.
func (l *Loader) Save(cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return errors.Wrapf(err, "config: creating directory for %s", l.path)
	}
	l.v.Set("bender_url", cfg.BenderURL)
	l.v.Set("id", cfg.ID)
	l.v.Set("blendpath", cfg.BlendPath)
	l.v.Set("outpath", cfg.OutPath)
	l.v.Set("disklimit", cfg.DiskLimit)
	l.v.Set("workload", cfg.Workload)
	l.v.Set("grace_period", cfg.GracePeriodSecs)
	l.v.Set("mode", string(cfg.Mode))
	l.v.Set("heart_rate_seconds", cfg.HeartRateSeconds)
	l.v.Set("broker_url", cfg.BrokerURL)

	if err := l.v.WriteConfigAs(l.path); err != nil {
		return errors.Wrapf(err, "config: writing %s", l.path)
	}
	return nil
}

// Validate reports a configuration defect that should be fatal at startup
// (§7): an empty worker identity, a non-positive workload, a zero-length
// directory path, or a mode other than Independent or Server.
func Validate(cfg *Config) error {
	if cfg.ID == "" {
		return errors.New("config: id must not be empty")
	}
	if cfg.Workload <= 0 {
		return errors.New("config: workload must be positive")
	}
	if cfg.BlendPath == "" {
		return errors.New("config: blendpath must not be empty")
	}
	if cfg.OutPath == "" {
		return errors.New("config: outpath must not be empty")
	}
	if cfg.Mode != Independent && cfg.Mode != Server {
		return errors.Errorf("config: unrecognized mode %q", cfg.Mode)
	}
	return nil
}
