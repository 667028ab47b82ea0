// ABOUTME: Database schema definitions
// ABOUTME: Creates partner tables with cascading ownership of every child record
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS partners (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'New Lead',
	lead_source TEXT NOT NULL DEFAULT '',
	onboarding_step TEXT NOT NULL DEFAULT '',
	partnership_health TEXT NOT NULL DEFAULT '',
	renewal_status TEXT NOT NULL DEFAULT '',
	priority TEXT NOT NULL DEFAULT 'Medium',
	student_count INTEGER NOT NULL DEFAULT 0,
	staff_count INTEGER NOT NULL DEFAULT 0,
	school_count INTEGER NOT NULL DEFAULT 0,
	district TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL DEFAULT '',
	time_zone TEXT NOT NULL DEFAULT '',
	school_type TEXT NOT NULL DEFAULT '',
	summary TEXT NOT NULL DEFAULT '',
	pain_points TEXT NOT NULL DEFAULT '[]',
	last_contact TEXT,
	next_follow_up TEXT,
	proposal_deadline TEXT,
	contract_value INTEGER NOT NULL DEFAULT 0,
	contract_start TEXT,
	contract_end TEXT,
	staff_lead TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_partners_name ON partners(name);
CREATE INDEX IF NOT EXISTS idx_partners_status ON partners(status);

CREATE TABLE IF NOT EXISTS contacts (
	id TEXT PRIMARY KEY,
	partner_id TEXT NOT NULL,
	name TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	is_primary INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (partner_id) REFERENCES partners(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_contacts_partner_id ON contacts(partner_id);
CREATE INDEX IF NOT EXISTS idx_contacts_email ON contacts(email);

CREATE TABLE IF NOT EXISTS notes (
	id TEXT PRIMARY KEY,
	partner_id TEXT NOT NULL,
	type TEXT NOT NULL,
	date TEXT NOT NULL,
	author TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (partner_id) REFERENCES partners(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_notes_partner_id ON notes(partner_id);

CREATE TABLE IF NOT EXISTS follow_up_tasks (
	id TEXT PRIMARY KEY,
	partner_id TEXT NOT NULL,
	note_id TEXT,
	task TEXT NOT NULL,
	due_date TEXT,
	notes TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'Not Started',
	completed INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (partner_id) REFERENCES partners(id) ON DELETE CASCADE,
	FOREIGN KEY (note_id) REFERENCES notes(id) ON DELETE CASCADE,
	CHECK (completed = (status = 'Complete'))
);

CREATE INDEX IF NOT EXISTS idx_follow_up_tasks_partner_id ON follow_up_tasks(partner_id);
CREATE INDEX IF NOT EXISTS idx_follow_up_tasks_note_id ON follow_up_tasks(note_id);

CREATE TABLE IF NOT EXISTS onboarding_tasks (
	id TEXT PRIMARY KEY,
	partner_id TEXT NOT NULL,
	sequence INTEGER NOT NULL,
	task TEXT NOT NULL DEFAULT '',
	custom INTEGER NOT NULL DEFAULT 0,
	completed INTEGER NOT NULL DEFAULT 0,
	due_date TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (partner_id) REFERENCES partners(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_onboarding_tasks_partner_seq ON onboarding_tasks(partner_id, sequence);

CREATE TABLE IF NOT EXISTS important_dates (
	id TEXT PRIMARY KEY,
	partner_id TEXT NOT NULL,
	title TEXT NOT NULL,
	date TEXT NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	FOREIGN KEY (partner_id) REFERENCES partners(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_important_dates_partner_id ON important_dates(partner_id);

CREATE TABLE IF NOT EXISTS attachments (
	id TEXT PRIMARY KEY,
	partner_id TEXT NOT NULL,
	name TEXT NOT NULL,
	url TEXT NOT NULL,
	type TEXT NOT NULL CHECK(type IN ('file', 'link')),
	created_at DATETIME NOT NULL,
	FOREIGN KEY (partner_id) REFERENCES partners(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_attachments_partner_id ON attachments(partner_id);

CREATE TABLE IF NOT EXISTS schools (
	id TEXT PRIMARY KEY,
	partner_id TEXT,
	name TEXT NOT NULL,
	student_count INTEGER NOT NULL DEFAULT 0,
	staff_count INTEGER NOT NULL DEFAULT 0,
	school_type TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	FOREIGN KEY (partner_id) REFERENCES partners(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_schools_partner_id ON schools(partner_id);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
