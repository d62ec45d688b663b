package catalog

const schemaDDL = `
CREATE TABLE IF NOT EXISTS questions (
	name     TEXT PRIMARY KEY,
	kind     TEXT NOT NULL,
	title    TEXT NOT NULL DEFAULT '',
	position INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS question_codes (
	question TEXT NOT NULL REFERENCES questions(name),
	code     INTEGER NOT NULL,
	label    TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (question, code)
);

CREATE TABLE IF NOT EXISTS recodes (
	name     TEXT PRIMARY KEY,
	title    TEXT NOT NULL DEFAULT '',
	kind     TEXT NOT NULL,
	formula  TEXT NOT NULL DEFAULT '',
	position INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS recode_codes (
	recode TEXT NOT NULL REFERENCES recodes(name),
	code   INTEGER NOT NULL,
	label  TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (recode, code)
);

CREATE TABLE IF NOT EXISTS recode_weights (
	recode   TEXT NOT NULL REFERENCES recodes(name),
	position INTEGER NOT NULL,
	formula  TEXT NOT NULL,
	weight   REAL NOT NULL,
	PRIMARY KEY (recode, position)
);

CREATE TABLE IF NOT EXISTS recode_subtotals (
	recode TEXT NOT NULL REFERENCES recodes(name),
	code   INTEGER NOT NULL,
	member INTEGER NOT NULL,
	PRIMARY KEY (recode, code, member)
);

CREATE TABLE IF NOT EXISTS filters (
	name          TEXT PRIMARY KEY,
	formula       TEXT NOT NULL,
	include_nulls INTEGER NOT NULL DEFAULT 0,
	position      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS classes (
	name          TEXT PRIMARY KEY,
	include_nulls INTEGER NOT NULL DEFAULT 0,
	position      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS class_bins (
	class    TEXT NOT NULL REFERENCES classes(name),
	position INTEGER NOT NULL,
	formula  TEXT NOT NULL,
	label    TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (class, position)
);

CREATE TABLE IF NOT EXISTS plans (
	name        TEXT PRIMARY KEY,
	filter_name TEXT NOT NULL DEFAULT '',
	weight_var  TEXT NOT NULL DEFAULT '',
	position    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tabs (
	plan           TEXT NOT NULL REFERENCES plans(name),
	position       INTEGER NOT NULL,
	title          TEXT NOT NULL DEFAULT '',
	row_var        TEXT NOT NULL,
	col_var        TEXT NOT NULL,
	second_col_var TEXT NOT NULL DEFAULT '',
	filter_name    TEXT NOT NULL DEFAULT '',
	weight_var     TEXT NOT NULL DEFAULT '',
	class_name     TEXT NOT NULL DEFAULT '',
	null_handling  TEXT NOT NULL DEFAULT '',
	display        INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (plan, position)
);
`
