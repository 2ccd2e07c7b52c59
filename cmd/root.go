package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/medialibre/mediatheque/internal/cache"
	"github.com/medialibre/mediatheque/internal/canonical"
	"github.com/medialibre/mediatheque/internal/config"
	"github.com/medialibre/mediatheque/internal/fileutil"
	"github.com/medialibre/mediatheque/internal/overlay"
	"github.com/medialibre/mediatheque/internal/search"
	"github.com/medialibre/mediatheque/internal/sources"
	"github.com/medialibre/mediatheque/internal/sources/bnf"
	"github.com/medialibre/mediatheque/internal/sources/googlebooks"
	"github.com/medialibre/mediatheque/internal/sources/openlibrary"
	"github.com/medialibre/mediatheque/internal/sources/tmdb"
	"github.com/medialibre/mediatheque/internal/sources/tvmaze"
	"github.com/medialibre/mediatheque/internal/store"
	"github.com/medialibre/mediatheque/internal/syncer"
	"github.com/medialibre/mediatheque/internal/translate"
	"github.com/medialibre/mediatheque/internal/tui"
)

// selectRecord is swapped in tests to avoid driving a real terminal.
var selectRecord = tui.Select

// CLI represents the complete command structure for the mediatheque application
type CLI struct {
	// Global flags
	DBFile    string `help:"Path to library SQLite database file (defaults to library.dbfile in config)"`
	CoversDir string `help:"Directory for downloaded cover images (defaults to covers.dir in config)"`

	// Cache flags
	CacheDBFile string `help:"Path to cache SQLite database file" default:"./cache.db"`
	CacheTTL    string `help:"Cache time-to-live duration (e.g., 720h for 30 days)" default:"720h"`

	Search  SearchCmd  `cmd:"" help:"Search external catalogs for media"`
	Import  ImportCmd  `cmd:"" help:"Import one item into the library"`
	Sync    SyncCmd    `cmd:"" help:"Refresh library entries with full TMDB payloads"`
	Overlay OverlayCmd `cmd:"" help:"Manage per-user reading/viewing state"`
	Cache   CacheCmd   `cmd:"" help:"Cache maintenance"`
}

// SearchCmd fans a query out over the sources configured for a domain.
type SearchCmd struct {
	Query      string `arg:"" help:"Free-text query"`
	Domain     string `short:"d" help:"Media domain: book, bd, comic, manga, movie, tv" default:"book"`
	Limit      int    `short:"l" help:"Maximum number of merged results" default:"20"`
	JSON       bool   `help:"Print results as JSON"`
	JSONOutput string `help:"Write results as JSON to this file instead of stdout"`
}

// ImportCmd imports one item by external id, or by query via the picker.
type ImportCmd struct {
	Source         string `arg:"" help:"Source name: google_books, open_library, bnf, tmdb, tvmaze"`
	ID             string `arg:"" optional:"" help:"External id (or ISBN) at the source"`
	Query          string `short:"q" help:"Search the source instead of naming an id"`
	Domain         string `short:"d" help:"Media domain: book, bd, comic, manga, movie, tv" default:"book"`
	User           string `short:"u" help:"User name to create an overlay row for"`
	DownloadCovers bool   `help:"Download the cover image alongside the import"`
	NoInteractive  bool   `help:"Auto-select the first query candidate instead of the picker" default:"false"`
}

// SyncCmd groups the TMDB full-refresh subcommands.
type SyncCmd struct {
	Movie SyncMovieCmd `cmd:"" help:"Refresh a movie with credits, keywords and providers"`
	TV    SyncTVCmd    `cmd:"" help:"Refresh a TV show including its seasons and episodes"`
}

// SyncMovieCmd refreshes one movie by TMDB id.
type SyncMovieCmd struct {
	ID int `arg:"" help:"TMDB movie id"`
}

// SyncTVCmd refreshes one show by TMDB id.
type SyncTVCmd struct {
	ID int `arg:"" help:"TMDB TV show id"`
}

// OverlayCmd groups the per-user overlay subcommands.
type OverlayCmd struct {
	Favorite OverlayFavoriteCmd `cmd:"" help:"Toggle the favorite flag"`
	Hide     OverlayHideCmd     `cmd:"" help:"Toggle the hidden flag"`
	Status   OverlayStatusCmd   `cmd:"" help:"Set the reading/viewing status"`
	Progress OverlayProgressCmd `cmd:"" help:"Record progress (pages read, episodes seen)"`
}

// OverlayFavoriteCmd toggles the favorite flag for one user and item.
type OverlayFavoriteCmd struct {
	MediaID int64  `arg:"" help:"Library media id"`
	User    string `short:"u" required:"" help:"User name"`
}

// OverlayHideCmd toggles the hidden flag for one user and item.
type OverlayHideCmd struct {
	MediaID int64  `arg:"" help:"Library media id"`
	User    string `short:"u" required:"" help:"User name"`
}

// OverlayStatusCmd sets the status and optional score and dates.
type OverlayStatusCmd struct {
	MediaID   int64    `arg:"" help:"Library media id"`
	Status    string   `arg:"" help:"Status value (e.g. reading, watched, wishlist)"`
	User      string   `short:"u" required:"" help:"User name"`
	Score     *float64 `help:"Personal score"`
	StartDate string   `help:"Start date (YYYY-MM-DD)"`
	EndDate   string   `help:"End date (YYYY-MM-DD)"`
}

// OverlayProgressCmd records progress and re-derives the completion tag.
type OverlayProgressCmd struct {
	MediaID  int64  `arg:"" help:"Library media id"`
	Progress int    `arg:"" help:"Units completed"`
	Total    int    `help:"Total units (0 keeps the stored total)"`
	User     string `short:"u" required:"" help:"User name"`
}

// CacheCmd groups cache maintenance subcommands.
type CacheCmd struct {
	Clear cache.ClearCmd `cmd:"" help:"Clear cached responses for one source"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging()
	initConfig()

	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("mediatheque"),
		kong.Description("A personal media library synchronized from public catalogs."),
		kong.UsageOnError(),
	)

	updateGlobalConfig(&cli)

	err := ctx.Run()
	if err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	// Library defaults
	viper.SetDefault("library.dbfile", "./mediatheque.db")
	viper.SetDefault("covers.dir", "./covers")
	viper.SetDefault("language", "fr")
	viper.SetDefault("fallback_language", "en")

	// Cache defaults
	viper.SetDefault("cache.dbfile", "./cache.db")
	viper.SetDefault("cache.ttl", "720h") // 30 days

	// Enable environment variable support
	viper.AutomaticEnv()
	// Bind specific environment variables to config keys
	for key, env := range map[string]string{
		"TMDBAPIKey":        "TMDB_API_KEY",
		"TMDBAccessToken":   "TMDB_ACCESS_TOKEN",
		"GoogleBooksAPIKey": "GOOGLE_BOOKS_API_KEY",
		"GroqAPIKey":        "GROQ_API_KEY",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			slog.Error("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Info("Config file not found, writing default config file...")
			if err := viper.SafeWriteConfig(); err != nil {
				slog.Error("Error writing config file", "error", err)
			}
			os.Exit(0)
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	// Initialize global config
	config.InitConfig()
}

func updateGlobalConfig(cli *CLI) {
	// Update cache config
	viper.Set("cache.dbfile", cli.CacheDBFile)
	viper.Set("cache.ttl", cli.CacheTTL)

	// Library paths only override the config file when given explicitly
	if cli.DBFile != "" {
		viper.Set("library.dbfile", cli.DBFile)
	}
	if cli.CoversDir != "" {
		viper.Set("covers.dir", cli.CoversDir)
	}

	config.InitConfig()
}

// Run methods for each command

func (s *SearchCmd) Run() error {
	domain, err := parseDomain(s.Domain)
	if err != nil {
		return err
	}

	st, err := store.Open(config.LibraryDBFile)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	svc := search.NewService(buildClients(domain), st.Media())
	result, err := svc.Search(context.Background(), s.Query, domain, sources.Options{
		Limit:    s.Limit,
		Language: config.Language,
	})
	if err != nil {
		return err
	}

	if s.JSONOutput != "" {
		return writeResultsJSON(result.Results, s.JSONOutput)
	}

	if s.JSON {
		out, err := json.MarshalIndent(result.Results, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	for _, rec := range result.Results {
		marker := " "
		if rec.InLibrary {
			marker = "*"
		}
		line := fmt.Sprintf("%s [%s] %s", marker, rec.SourceName, rec.Title)
		if year := firstYear(rec.ReleaseDate); year != "" {
			line += " (" + year + ")"
		}
		if len(rec.Authors) > 0 {
			line += " by " + strings.Join(rec.Authors, ", ")
		}
		if isbn := rec.BestISBN(); isbn != "" {
			line += " ISBN " + isbn
		}
		fmt.Println(line)
	}
	slog.Info("Search finished", "domain", domain, "results", len(result.Results), "total", result.TotalResults)
	return nil
}

func (i *ImportCmd) Run() error {
	domain, err := parseDomain(i.Domain)
	if err != nil {
		return err
	}
	source := canonical.Source(i.Source)

	if (i.ID == "") == (i.Query == "") {
		return fmt.Errorf("provide exactly one of an external id or --query")
	}

	st, err := store.Open(config.LibraryDBFile)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	clients := buildClients(domain)
	client, ok := findClient(clients, source)
	if !ok {
		return fmt.Errorf("source %q serves no %s imports", i.Source, domain)
	}

	ctx := context.Background()

	externalID := i.ID
	if externalID == "" {
		externalID, err = pickCandidate(ctx, client, i.Query, !i.NoInteractive)
		if err != nil {
			return err
		}
		if externalID == "" {
			slog.Info("Nothing selected, import cancelled")
			return nil
		}
	}

	userID, err := resolveUser(ctx, st, i.User)
	if err != nil {
		return err
	}

	sy := syncer.New(st, clients, translate.NewClient(), config.Language, config.FallbackLanguage)
	result, err := sy.Import(ctx, externalID, source, domain, userID)
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("no %s item found at %s for id %q", domain, source, externalID)
	}

	if i.DownloadCovers {
		if err := downloadCover(ctx, client, externalID, source); err != nil {
			slog.Warn("Cover download failed", "error", err)
		}
	}

	slog.Info("Import finished", "source", source, "external_id", externalID,
		"local_id", result.LocalID, "already_existed", result.AlreadyExists)
	return nil
}

func (m *SyncMovieCmd) Run() error {
	st, err := store.Open(config.LibraryDBFile)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	tm := newTMDBClient()
	sy := syncer.New(st, nil, translate.NewClient(), config.Language, config.FallbackLanguage)
	localID, created, err := sy.SyncMovie(context.Background(), tm, m.ID, tm.ImageBaseURL())
	if err != nil {
		return err
	}
	slog.Info("Movie synced", "tmdb_id", m.ID, "local_id", localID, "created", created)
	return nil
}

func (t *SyncTVCmd) Run() error {
	st, err := store.Open(config.LibraryDBFile)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	tm := newTMDBClient()
	sy := syncer.New(st, nil, translate.NewClient(), config.Language, config.FallbackLanguage)
	localID, created, err := sy.SyncTV(context.Background(), tm, t.ID, tm.ImageBaseURL())
	if err != nil {
		return err
	}
	slog.Info("TV show synced", "tmdb_id", t.ID, "local_id", localID, "created", created)
	return nil
}

func (f *OverlayFavoriteCmd) Run() error {
	return withOverlayManager(f.User, func(ctx context.Context, m *overlay.Manager, userID int64) (overlay.Result, error) {
		value, result, err := m.ToggleFavorite(ctx, f.MediaID, userID)
		if err == nil && result.Success {
			slog.Info("Favorite toggled", "media_id", f.MediaID, "favorite", value)
		}
		return result, err
	})
}

func (h *OverlayHideCmd) Run() error {
	return withOverlayManager(h.User, func(ctx context.Context, m *overlay.Manager, userID int64) (overlay.Result, error) {
		value, result, err := m.ToggleHidden(ctx, h.MediaID, userID)
		if err == nil && result.Success {
			slog.Info("Hidden toggled", "media_id", h.MediaID, "hidden", value)
		}
		return result, err
	})
}

func (s *OverlayStatusCmd) Run() error {
	return withOverlayManager(s.User, func(ctx context.Context, m *overlay.Manager, userID int64) (overlay.Result, error) {
		result, err := m.SetStatus(ctx, s.MediaID, userID, s.Status, s.Score, s.StartDate, s.EndDate)
		if err == nil && result.Success {
			slog.Info("Status updated", "media_id", s.MediaID, "status", s.Status)
		}
		return result, err
	})
}

func (p *OverlayProgressCmd) Run() error {
	return withOverlayManager(p.User, func(ctx context.Context, m *overlay.Manager, userID int64) (overlay.Result, error) {
		result, err := m.SetProgress(ctx, p.MediaID, userID, p.Progress, p.Total)
		if err == nil && result.Success {
			slog.Info("Progress updated", "media_id", p.MediaID, "progress", p.Progress, "total", p.Total)
		}
		return result, err
	})
}

// withOverlayManager opens the store, resolves the user name and funnels the
// Result error convention back into a single CLI error.
func withOverlayManager(user string, fn func(context.Context, *overlay.Manager, int64) (overlay.Result, error)) error {
	st, err := store.Open(config.LibraryDBFile)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	userID, err := resolveUser(ctx, st, user)
	if err != nil {
		return err
	}

	result, err := fn(ctx, overlay.NewManager(st), userID)
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("%s", result.Error)
	}
	return nil
}

// buildClients assembles the source clients serving a domain. TMDB covers
// movies, TVMaze leads for TV, and the three book catalogs share the print
// domains.
func buildClients(domain canonical.Domain) []sources.Client {
	switch domain {
	case canonical.DomainMovie:
		return []sources.Client{&tmdb.MovieSource{Client: newTMDBClient()}}
	case canonical.DomainTV:
		return []sources.Client{tvmaze.NewClient(), &tmdb.TVSource{Client: newTMDBClient()}}
	default:
		return []sources.Client{googlebooks.NewClient(), openlibrary.NewClient(), bnf.NewClient()}
	}
}

func newTMDBClient() *tmdb.Client {
	return tmdb.NewClient(config.TMDBAPIKey,
		tmdb.WithAccessToken(config.TMDBAccessToken),
		tmdb.WithLanguage(config.Language),
	)
}

func findClient(clients []sources.Client, source canonical.Source) (sources.Client, bool) {
	for _, c := range clients {
		if c.Name() == source {
			return c, true
		}
	}
	return nil, false
}

// pickCandidate searches the source and returns the chosen external id, or
// "" when the user skipped or stopped. In non-interactive mode the first
// candidate wins.
func pickCandidate(ctx context.Context, client sources.Client, query string, interactive bool) (string, error) {
	candidates, err := client.Search(ctx, query, sources.Options{Language: config.Language})
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no candidates found for %q", query)
	}

	if !interactive || len(candidates) == 1 {
		return candidates[0].ExternalID, nil
	}

	selection, err := selectRecord(fmt.Sprintf("Select a match for %q", query), candidates)
	if err != nil {
		return "", err
	}
	if selection.Action != tui.ActionSelected || selection.Selection == nil {
		return "", nil
	}
	return selection.Selection.ExternalID, nil
}

// resolveUser maps a user name to its row id, creating the row on first
// use. An empty name means no overlay and resolves to 0.
func resolveUser(ctx context.Context, st *store.Store, name string) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, nil
	}
	user, err := st.Users().Ensure(ctx, name)
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

func downloadCover(ctx context.Context, client sources.Client, externalID string, source canonical.Source) error {
	rec, err := client.GetByID(ctx, externalID)
	if err != nil {
		return err
	}
	if rec == nil || rec.CoverURL == "" {
		return nil
	}

	result, err := fileutil.DownloadCover(ctx, fileutil.CoverDownloadOptions{
		URL:        rec.CoverURL,
		OutputDir:  config.CoverOutputDir,
		Source:     string(source),
		ExternalID: externalID,
	})
	if err != nil {
		return err
	}
	if result != nil && result.Downloaded {
		slog.Info("Cover downloaded", "path", result.LocalPath)
	}
	return nil
}

func writeResultsJSON(results []canonical.Record, path string) error {
	written, err := fileutil.WriteJSONFile(results, path, true)
	if err != nil {
		return err
	}
	if written {
		slog.Info("Results written", "path", path, "results", len(results))
	}
	return nil
}

func parseDomain(value string) (canonical.Domain, error) {
	switch d := canonical.Domain(strings.ToLower(strings.TrimSpace(value))); d {
	case canonical.DomainBook, canonical.DomainBD, canonical.DomainComic,
		canonical.DomainManga, canonical.DomainMovie, canonical.DomainTV:
		return d, nil
	default:
		return "", fmt.Errorf("unknown domain %q (expected book, bd, comic, manga, movie or tv)", value)
	}
}

func firstYear(releaseDate string) string {
	if len(releaseDate) < 4 {
		return ""
	}
	return releaseDate[:4]
}

func initLogging() {
	// Create a human-readable handler for logging
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: slog.LevelInfo,
	})

	// Set the default logger
	slog.SetDefault(slog.New(handler))
}
