// Command quicktrans translates text from a launcher or the command line.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/minios-linux/quicktrans/clipboard"
	"github.com/minios-linux/quicktrans/config"
	"github.com/minios-linux/quicktrans/debounce"
	"github.com/minios-linux/quicktrans/host"
	"github.com/minios-linux/quicktrans/i18n"
	"github.com/minios-linux/quicktrans/langmeta"
	"github.com/minios-linux/quicktrans/plugin"
	"github.com/minios-linux/quicktrans/results"
	"github.com/minios-linux/quicktrans/settings"
	"github.com/minios-linux/quicktrans/translate"
	"github.com/spf13/cobra"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
	colorGray   = "\033[0;90m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

func logDebug(format string, args ...any) {
	if !flags.verbose {
		return
	}
	fmt.Fprintf(os.Stderr, colorGray+"[DEBUG]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

type globalFlags struct {
	configPath string
	verbose    bool

	backend string
	model   string
	baseURL string
	apiKey  string
	proxy   string
	timeout time.Duration
}

var flags globalFlags

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "quicktrans",
		Short: "Translate text from a launcher or the command line",
		Long: `quicktrans — translate text from a launcher or the command line.

Queries have the form "[[src] dest] text". The first word is taken as the
target language when it is a known language code or synonym, the second
word as the target (and the first as the source) when both are languages.
Anything else is translated into the default language.

  quicktrans query fr Hello world          Hello world -> French
  quicktrans query en fr Hello world       English -> French
  quicktrans query Bonjour                 -> default language

Commands:
  query       Translate one query and print the results
  serve       Read live queries from stdin (launcher host mode)
  languages   List supported languages and synonyms
  auth        Manage provider API keys

Backends:
  google         Google Translate web endpoint (default, no key)
  lingva         Lingva Translate (no key)
  gemini         Google AI (Gemini) — API key
  groq           Groq — API key
  ollama         Ollama local server
  custom-openai  Custom OpenAI-compatible endpoint`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			i18n.Init(i18n.SystemLanguage())
			if err := config.LoadEnv(); err != nil {
				logWarning("%v", err)
			}
		},
	}

	// Global persistent flags, inherited by all subcommands
	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Settings file (default: $XDG_CONFIG_HOME/quicktrans/settings.yaml)")
	pf.BoolVar(&flags.verbose, "verbose", false, "Enable debug logging")
	pf.StringVar(&flags.backend, "backend", "", "Translation backend: "+strings.Join(translate.ProviderIDs(), ", "))
	pf.StringVar(&flags.model, "model", "", "Model name (AI backends)")
	pf.StringVar(&flags.baseURL, "base-url", "", "Custom API base URL")
	pf.StringVar(&flags.apiKey, "api-key", "", "API key (or QUICKTRANS_API_KEY env var)")
	pf.StringVar(&flags.proxy, "proxy", "", "HTTP/HTTPS proxy URL")
	pf.DurationVar(&flags.timeout, "timeout", 0, "Translation timeout (0 = settings value)")

	_ = root.RegisterFlagCompletionFunc("backend", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		defaults := translate.DefaultProviders()
		out := make([]string, 0, len(defaults))
		for _, id := range translate.ProviderIDs() {
			out = append(out, id+"\t"+defaults[id].Name)
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(
		newQueryCmd(),
		newServeCmd(),
		newLanguagesCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("quicktrans version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// query (one-shot translation)
// ---------------------------------------------------------------------------

func newQueryCmd() *cobra.Command {
	var (
		copyN       int
		jsonOut     bool
		lang        string
		useDebounce bool
	)

	cmd := &cobra.Command{
		Use:   "query TEXT...",
		Short: "Translate one query and print the results",
		Long: `Translate one query and print one result per line.

Examples:
  quicktrans query de Good morning
  quicktrans query --copy 1 ja Thank you
  quicktrans query --backend lingva --json es en Hola mundo`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), strings.Join(args, " "), queryArgs{
				copyN: copyN, jsonOut: jsonOut, lang: lang, debounce: useDebounce,
			})
		},
	}

	cmd.Flags().IntVar(&copyN, "copy", 0, "Copy result N (1-based) to the clipboard")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print results as JSON")
	cmd.Flags().StringVar(&lang, "lang", "", "Default target language (overrides settings)")
	cmd.Flags().BoolVar(&useDebounce, "debounce", false, "Apply the launcher debounce window before translating")

	return cmd
}

type queryArgs struct {
	copyN    int
	jsonOut  bool
	lang     string
	debounce bool
}

func runQuery(ctx context.Context, text string, a queryArgs) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	if a.lang != "" {
		s.DefaultLang = a.lang
	}
	// A one-shot query is never superseded.
	gate := debounce.Gate{Iterations: 1, Interval: time.Millisecond}
	if a.debounce {
		gate = debounce.Gate{Iterations: s.Debounce.Iterations, Interval: s.Debounce.Interval}
	}

	p, err := newPlugin(s, gate, pickClipboard(a.copyN > 0))
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	q := host.NewQuery(text)
	if err := p.HandleQuery(ctx, q); err != nil {
		return translationError(err)
	}
	items := q.Items()
	logDebug(i18n.N("%d result", "%d results", len(items)), len(items))

	if a.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(items); err != nil {
			return fmt.Errorf("encoding results: %w", err)
		}
	} else {
		printItems(items)
	}

	if a.copyN > 0 {
		return copyItem(items, a.copyN)
	}
	return nil
}

func printItems(items []results.Item) {
	for i, it := range items {
		if len(items) > 1 {
			fmt.Printf("%d. %s\n", i+1, it.Text)
		} else {
			fmt.Println(it.Text)
		}
		fmt.Fprintf(os.Stderr, "   %s%s%s\n", colorGray, it.Subtext, colorReset)
	}
}

// translationError localizes the failure prefix but keeps err unwrappable.
func translationError(err error) error {
	return fmt.Errorf(i18n.T("Translation failed: %w"), err)
}

// copyItem runs the copy action of the n-th item (1-based).
func copyItem(items []results.Item, n int) error {
	if n < 1 || n > len(items) {
		return fmt.Errorf("--copy %d: only %d result(s)", n, len(items))
	}
	actions := items[n-1].Actions
	if len(actions) == 0 {
		return fmt.Errorf("result %d has no actions", n)
	}
	if err := actions[0].Run(); err != nil {
		return err
	}
	logSuccess("%s", i18n.T("Copied to clipboard"))
	return nil
}

// pickClipboard returns the system clipboard, or an in-memory one when no
// clipboard tool is installed and nothing will be copied.
func pickClipboard(required bool) results.Clipboard {
	sys := clipboard.System{}
	if sys.Available() || required {
		return sys
	}
	logDebug("no system clipboard available, copy actions are kept in memory")
	return &clipboard.Memory{}
}

// ---------------------------------------------------------------------------
// serve (live queries from stdin)
// ---------------------------------------------------------------------------

func newServeCmd() *cobra.Command {
	var (
		trigger string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Read live queries from stdin",
		Long: `Read queries line by line from stdin, the way a launcher delivers
keystrokes. Each line starting with the trigger replaces the previous query;
superseded queries are dropped during the debounce window and never reach the
backend. Results are written to stdout when a query completes.

A line "!copy <seq> <n>" copies result n of finished query #seq to the
clipboard. It is handled before the trigger and does not replace the
current query.

Examples:
  printf 'tr fr Hel\ntr fr Hello\n' | quicktrans serve
  quicktrans serve --trigger "" --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("trigger") {
				s.Trigger = trigger
			}

			gate := debounce.Gate{Iterations: s.Debounce.Iterations, Interval: s.Debounce.Interval}
			p, err := newPlugin(s, gate, pickClipboard(false))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			session := &host.Session{
				Trigger: s.Trigger,
				JSON:    jsonOut,
				Out:     os.Stdout,
				OnLog:   logDebug,
				Handler: func(ctx context.Context, q *host.Query) error {
					return p.HandleQuery(ctx, q)
				},
			}
			logDebug("serving: trigger %q, default language %s", s.Trigger, p.DefaultLang())
			return session.Run(ctx, os.Stdin)
		},
	}

	cmd.Flags().StringVar(&trigger, "trigger", config.DefaultTrigger, "Query prefix (empty = every line is a query)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print one JSON record per query")

	return cmd
}

// ---------------------------------------------------------------------------
// languages
// ---------------------------------------------------------------------------

func newLanguagesCmd() *cobra.Command {
	var showSynonyms bool

	cmd := &cobra.Command{
		Use:     "languages",
		Aliases: []string{"langs"},
		Short:   "List supported languages and synonyms",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			catalog := langmeta.NewCatalog(s.Synonyms, logWarning)

			if showSynonyms {
				syn := catalog.Synonyms()
				aliases := make([]string, 0, len(syn))
				for alias := range syn {
					aliases = append(aliases, alias)
				}
				sort.Strings(aliases)
				if len(aliases) == 0 {
					logInfo("No synonyms configured")
					return nil
				}
				for _, alias := range aliases {
					fmt.Printf("%-16s %s (%s)\n", alias, syn[alias], catalog.Name(syn[alias]))
				}
				return nil
			}

			for _, code := range langmeta.Codes() {
				fmt.Printf("%-6s %-24s %s\n", code, catalog.Name(code), catalog.Native(code))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showSynonyms, "synonyms", false, "Show the configured synonym table instead")

	return cmd
}

// ---------------------------------------------------------------------------
// auth
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage provider API keys",
		Long: `Manage API keys for AI backends.

API key providers:
  gemini        Google AI Studio (Gemini API key)
  groq          Groq Cloud (free tier available)
  custom-openai Custom OpenAI-compatible endpoint

No auth required:
  google, lingva, ollama

Examples:
  quicktrans auth set --provider groq      Store a Groq API key
  quicktrans auth remove --provider groq   Remove the Groq API key
  quicktrans auth remove                   Remove all credentials
  quicktrans auth list                     Show stored credentials`,
	}

	cmd.AddCommand(
		newAuthSetCmd(),
		newAuthRemoveCmd(),
		newAuthListCmd(),
	)

	return cmd
}

// apiKeyProviders are the backends that read keys from the store.
var apiKeyProviders = []struct {
	id      string
	name    string
	helpURL string
}{
	{translate.ProviderGemini, "Google AI Studio", "https://aistudio.google.com/apikey"},
	{translate.ProviderGroq, "Groq Cloud", "https://console.groq.com/keys"},
	{translate.ProviderCustomOpenAI, "Custom OpenAI", ""},
}

func isAPIKeyProvider(id string) bool {
	for _, p := range apiKeyProviders {
		if p.id == id {
			return true
		}
	}
	return false
}

func completeAPIKeyProviders(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, 0, len(apiKeyProviders))
	for _, p := range apiKeyProviders {
		out = append(out, p.id+"\t"+p.name)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func newAuthSetCmd() *cobra.Command {
	var provider, baseURL string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store an API key (read from stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isAPIKeyProvider(provider) {
				return fmt.Errorf("unknown provider '%s' (API key providers: gemini, groq, custom-openai)", provider)
			}
			for _, p := range apiKeyProviders {
				if p.id == provider && p.helpURL != "" {
					fmt.Fprintf(os.Stderr, "  Get your API key from: %s%s%s\n", colorGreen, p.helpURL, colorReset)
				}
			}

			existing := settings.GetAPIKey(provider)
			if existing != "" {
				fmt.Fprintf(os.Stderr, "  Current key: %s%s%s\n", colorYellow, settings.MaskKey(existing), colorReset)
				fmt.Fprintf(os.Stderr, "  Enter new key to replace, or press Enter to keep: ")
			} else {
				fmt.Fprintf(os.Stderr, "  Enter API key: ")
			}

			key, err := readLine(os.Stdin)
			if err != nil {
				return err
			}
			if key == "" {
				key = existing
			}
			if key == "" && provider != translate.ProviderCustomOpenAI {
				return errors.New("no API key provided")
			}
			if baseURL == "" {
				baseURL = settings.GetBaseURL(provider)
			}
			if provider == translate.ProviderCustomOpenAI && baseURL == "" {
				return errors.New("provider 'custom-openai' requires --base-url")
			}

			if err := settings.SetAPIKey(provider, key, baseURL); err != nil {
				return fmt.Errorf("saving API key: %w", err)
			}
			logSuccess("%s credentials saved to %s", provider, settings.FilePath())
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider: gemini, groq, custom-openai")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Endpoint URL (custom-openai)")
	_ = cmd.MarkFlagRequired("provider")
	_ = cmd.RegisterFlagCompletionFunc("provider", completeAPIKeyProviders)

	return cmd
}

func readLine(f *os.File) (string, error) {
	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		return "", nil
	}
	return strings.TrimSpace(scanner.Text()), nil
}

func newAuthRemoveCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:     "remove",
		Aliases: []string{"logout"},
		Short:   "Remove stored credentials",
		Long: `Remove stored credentials for one or all providers.

If --provider is not specified, credentials for ALL providers are removed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if provider == "" {
				if err := settings.RemoveAll(); err != nil {
					return err
				}
				logSuccess("All stored credentials removed")
				return nil
			}
			if !isAPIKeyProvider(provider) {
				return fmt.Errorf("unknown provider '%s'. Run 'quicktrans auth list' to see providers", provider)
			}
			if err := settings.Remove(provider); err != nil {
				return fmt.Errorf("removing %s credentials: %w", provider, err)
			}
			logSuccess("%s credentials removed", provider)
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider to remove (default: all)")
	_ = cmd.RegisterFlagCompletionFunc("provider", completeAPIKeyProviders)

	return cmd
}

func newAuthListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show stored credentials and status",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stderr, "\n%sStored Credentials%s\n", colorBlue, colorReset)
			fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))

			for _, p := range apiKeyProviders {
				fmt.Fprintf(os.Stderr, "  %-14s %s\n", p.id, credentialStatus(settings.Get(p.id)))
			}

			fmt.Fprintf(os.Stderr, "\n  %sEnvironment Variables%s\n", colorYellow, colorReset)
			envNames := []string{settings.EnvAPIKey}
			for _, p := range apiKeyProviders {
				envNames = append(envNames, settings.EnvVarForProvider(p.id))
			}
			for _, name := range envNames {
				if v := os.Getenv(name); v != "" {
					fmt.Fprintf(os.Stderr, "  %s: %s%s%s\n", name, colorGreen, settings.MaskKey(v), colorReset)
				} else {
					fmt.Fprintf(os.Stderr, "  %s: %snot set%s\n", name, colorRed, colorReset)
				}
			}
			fmt.Fprintln(os.Stderr)
		},
	}
}

func credentialStatus(entry *settings.Info) string {
	switch {
	case entry == nil || (entry.Key == "" && entry.BaseURL == ""):
		return colorRed + "not configured" + colorReset
	case entry.Key == "":
		return fmt.Sprintf("%sconfigured%s (no key, endpoint: %s)", colorGreen, colorReset, entry.BaseURL)
	case entry.BaseURL != "":
		return fmt.Sprintf("%sconfigured%s (key: %s, endpoint: %s)", colorGreen, colorReset, settings.MaskKey(entry.Key), entry.BaseURL)
	default:
		return fmt.Sprintf("%sconfigured%s (key: %s)", colorGreen, colorReset, settings.MaskKey(entry.Key))
	}
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

// loadSettings reads the settings file and applies environment and flag
// overrides, in that order.
func loadSettings() (*config.Settings, error) {
	path := flags.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	s, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logDebug("settings: %s", path)
	if err := s.ApplyEnv(); err != nil {
		return nil, err
	}

	if flags.backend != "" {
		s.Backend = flags.backend
	}
	if flags.model != "" {
		s.Model = flags.model
	}
	if flags.baseURL != "" {
		s.BaseURL = flags.baseURL
	}
	if flags.proxy != "" {
		s.Proxy = flags.proxy
	}
	if flags.timeout > 0 {
		s.Timeout = flags.timeout
	}
	return s, nil
}

func resolveProvider(s *config.Settings) translate.Provider {
	defaults := translate.DefaultProviders()

	var prov translate.Provider

	if p, ok := defaults[strings.ToLower(s.Backend)]; ok {
		prov = p
	} else {
		// Unknown IDs are rejected by translate.New.
		prov = translate.Provider{ID: s.Backend, Name: s.Backend}
	}

	if s.BaseURL != "" {
		prov.BaseURL = s.BaseURL
	} else if prov.ID == translate.ProviderCustomOpenAI {
		if storedURL := settings.GetBaseURL(prov.ID); storedURL != "" {
			prov.BaseURL = storedURL
		}
	}
	prov.APIKey = settings.ResolveAPIKey(prov.ID, flags.apiKey)
	if s.Model != "" {
		prov.Model = s.Model
	}
	if s.Proxy != "" {
		prov.Proxy = s.Proxy
	}
	if s.Timeout > 0 {
		prov.Timeout = s.Timeout
	}

	return prov
}

// checkOllama reports a friendly error when the local Ollama server is down.
func checkOllama(prov translate.Provider) error {
	client := &http.Client{Timeout: 2 * time.Second}
	ollamaURL := strings.TrimSuffix(strings.TrimSuffix(prov.BaseURL, "/"), "/v1")
	if ollamaURL == "" {
		ollamaURL = "http://localhost:11434"
	}
	resp, err := client.Get(ollamaURL + "/api/tags")
	if err != nil {
		return fmt.Errorf("backend 'ollama' requires Ollama server to be running\n\n" +
			"Start Ollama with: ollama serve\n" +
			"Install from: https://ollama.com\n" +
			"Alternative backends:\n" +
			"  --backend google           (no key needed)\n" +
			"  --backend lingva           (no key needed)")
	}
	resp.Body.Close()
	return nil
}

func newPlugin(s *config.Settings, gate debounce.Gate, cb results.Clipboard) (*plugin.Plugin, error) {
	prov := resolveProvider(s)
	if prov.ID == translate.ProviderOllama {
		if err := checkOllama(prov); err != nil {
			return nil, err
		}
	}
	logDebug("backend: %s (%s)", prov.ID, prov.BaseURL)

	return plugin.Initialize(plugin.Options{
		Synonyms:    s.Synonyms,
		DefaultLang: s.DefaultLang,
		Provider:    prov,
		Gate:        gate,
		Timeout:     s.Timeout,
		Clipboard:   cb,
		OnWarn:      logWarning,
		OnLog:       logDebug,
	})
}
