package store

const userSchema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	created_at TEXT NOT NULL DEFAULT (datetime('now'))
)`

const mediaSchema = `
CREATE TABLE IF NOT EXISTS media (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_id TEXT NOT NULL,
	source_name TEXT NOT NULL,
	domain TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	original_title TEXT NOT NULL DEFAULT '',
	subtitle TEXT NOT NULL DEFAULT '',
	authors TEXT,
	publisher TEXT NOT NULL DEFAULT '',
	release_date TEXT NOT NULL DEFAULT '',
	language_code TEXT NOT NULL DEFAULT '',
	synopsis TEXT NOT NULL DEFAULT '',
	synopsis_source TEXT NOT NULL DEFAULT '',
	genres TEXT,
	isbn10 TEXT NOT NULL DEFAULT '',
	isbn13 TEXT NOT NULL DEFAULT '',
	cover_url TEXT NOT NULL DEFAULT '',
	detail_url TEXT NOT NULL DEFAULT '',
	page_count INTEGER NOT NULL DEFAULT 0,
	community_score REAL NOT NULL DEFAULT 0,
	community_votes INTEGER NOT NULL DEFAULT 0,
	price REAL,
	price_currency TEXT NOT NULL DEFAULT '',
	season_count INTEGER NOT NULL DEFAULT 0,
	episode_count INTEGER NOT NULL DEFAULT 0,
	credits TEXT,
	images TEXT,
	keywords TEXT,
	providers TEXT,
	external_ids TEXT,
	translations TEXT,
	created_at TEXT NOT NULL DEFAULT (datetime('now')),
	updated_at TEXT NOT NULL DEFAULT (datetime('now')),
	UNIQUE (source_id, source_name)
)`

// isbn13 doubles as a secondary identity; empty strings are exempt.
const mediaISBNIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS idx_media_isbn13 ON media (isbn13)
WHERE isbn13 <> ''`

const seasonSchema = `
CREATE TABLE IF NOT EXISTS seasons (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	show_id INTEGER NOT NULL REFERENCES media (id) ON DELETE CASCADE,
	season_number INTEGER NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	overview TEXT NOT NULL DEFAULT '',
	episode_count INTEGER NOT NULL DEFAULT 0,
	air_date TEXT NOT NULL DEFAULT '',
	poster_url TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL DEFAULT (datetime('now')),
	UNIQUE (show_id, season_number)
)`

const episodeSchema = `
CREATE TABLE IF NOT EXISTS episodes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	show_id INTEGER NOT NULL REFERENCES media (id) ON DELETE CASCADE,
	season_number INTEGER NOT NULL,
	episode_number INTEGER NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	overview TEXT NOT NULL DEFAULT '',
	air_date TEXT NOT NULL DEFAULT '',
	runtime INTEGER NOT NULL DEFAULT 0,
	community_score REAL NOT NULL DEFAULT 0,
	still_url TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL DEFAULT (datetime('now')),
	UNIQUE (show_id, season_number, episode_number)
)`

const overlaySchema = `
CREATE TABLE IF NOT EXISTS overlays (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	media_id INTEGER NOT NULL REFERENCES media (id) ON DELETE CASCADE,
	user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	status TEXT NOT NULL DEFAULT '',
	score REAL,
	progress INTEGER NOT NULL DEFAULT 0,
	progress_total INTEGER NOT NULL DEFAULT 0,
	favorite INTEGER NOT NULL DEFAULT 0,
	hidden INTEGER NOT NULL DEFAULT 0,
	labels TEXT,
	completion_tag TEXT NOT NULL DEFAULT '',
	manual_tag INTEGER NOT NULL DEFAULT 0,
	start_date TEXT NOT NULL DEFAULT '',
	end_date TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL DEFAULT (datetime('now')),
	UNIQUE (media_id, user_id)
)`

const ownershipSchema = `
CREATE TABLE IF NOT EXISTS ownership (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	volume_id INTEGER NOT NULL REFERENCES media (id) ON DELETE CASCADE,
	user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	price REAL NOT NULL DEFAULT 0,
	currency TEXT NOT NULL DEFAULT '',
	added_at TEXT NOT NULL DEFAULT (datetime('now')),
	UNIQUE (volume_id, user_id)
)`

const syncRunSchema = `
CREATE TABLE IF NOT EXISTS sync_runs (
	id TEXT PRIMARY KEY,
	source_name TEXT NOT NULL,
	external_id TEXT NOT NULL,
	local_id INTEGER NOT NULL DEFAULT 0,
	created INTEGER NOT NULL DEFAULT 0,
	synopsis_source TEXT NOT NULL DEFAULT '',
	error TEXT NOT NULL DEFAULT '',
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL
)`

var allSchemas = []string{
	userSchema,
	mediaSchema,
	mediaISBNIndex,
	seasonSchema,
	episodeSchema,
	overlaySchema,
	ownershipSchema,
	syncRunSchema,
}
