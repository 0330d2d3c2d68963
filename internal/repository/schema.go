package repository

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS agendas (
		id CHAR(36) NOT NULL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description VARCHAR(1000) NOT NULL,
		created_at DATETIME(6) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS associates (
		id CHAR(36) NOT NULL PRIMARY KEY,
		name VARCHAR(255) NOT NULL DEFAULT '',
		national_id VARCHAR(32) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		UNIQUE KEY uk_associates_national_id (national_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS voting_sessions (
		id CHAR(36) NOT NULL PRIMARY KEY,
		agenda_id CHAR(36) NOT NULL,
		start_time DATETIME(6) NOT NULL,
		end_time DATETIME(6) NOT NULL,
		duration_minutes BIGINT NOT NULL,
		status VARCHAR(16) NOT NULL,
		KEY idx_voting_sessions_agenda (agenda_id),
		CONSTRAINT fk_voting_sessions_agenda FOREIGN KEY (agenda_id) REFERENCES agendas (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS votes (
		id CHAR(36) NOT NULL PRIMARY KEY,
		associate_id CHAR(36) NOT NULL,
		session_id CHAR(36) NOT NULL,
		vote_option VARCHAR(8) NOT NULL,
		voted_at DATETIME(6) NOT NULL,
		UNIQUE KEY uk_votes_associate_session (associate_id, session_id),
		KEY idx_votes_session_option (session_id, vote_option),
		CONSTRAINT fk_votes_associate FOREIGN KEY (associate_id) REFERENCES associates (id),
		CONSTRAINT fk_votes_session FOREIGN KEY (session_id) REFERENCES voting_sessions (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS vote_audit_log (
		vote_id CHAR(36) NOT NULL PRIMARY KEY,
		session_id CHAR(36) NOT NULL,
		associate_id CHAR(36) NOT NULL,
		vote_option VARCHAR(8) NOT NULL,
		voted_at DATETIME(6) NOT NULL,
		recorded_at DATETIME(6) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS agendas (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS associates (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		national_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT uk_associates_national_id UNIQUE (national_id)
	)`,
	`CREATE TABLE IF NOT EXISTS voting_sessions (
		id TEXT PRIMARY KEY,
		agenda_id TEXT NOT NULL REFERENCES agendas (id),
		start_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ NOT NULL,
		duration_minutes BIGINT NOT NULL,
		status TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_voting_sessions_agenda ON voting_sessions (agenda_id)`,
	`CREATE TABLE IF NOT EXISTS votes (
		id TEXT PRIMARY KEY,
		associate_id TEXT NOT NULL REFERENCES associates (id),
		session_id TEXT NOT NULL REFERENCES voting_sessions (id),
		vote_option TEXT NOT NULL,
		voted_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT uk_votes_associate_session UNIQUE (associate_id, session_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_votes_session_option ON votes (session_id, vote_option)`,
	`CREATE TABLE IF NOT EXISTS vote_audit_log (
		vote_id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		associate_id TEXT NOT NULL,
		vote_option TEXT NOT NULL,
		voted_at TIMESTAMPTZ NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS agendas (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS associates (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		national_id TEXT NOT NULL UNIQUE,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS voting_sessions (
		id TEXT PRIMARY KEY,
		agenda_id TEXT NOT NULL REFERENCES agendas (id),
		start_time DATETIME NOT NULL,
		end_time DATETIME NOT NULL,
		duration_minutes INTEGER NOT NULL,
		status TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_voting_sessions_agenda ON voting_sessions (agenda_id)`,
	`CREATE TABLE IF NOT EXISTS votes (
		id TEXT PRIMARY KEY,
		associate_id TEXT NOT NULL REFERENCES associates (id),
		session_id TEXT NOT NULL REFERENCES voting_sessions (id),
		vote_option TEXT NOT NULL,
		voted_at DATETIME NOT NULL,
		UNIQUE (associate_id, session_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_votes_session_option ON votes (session_id, vote_option)`,
	`CREATE TABLE IF NOT EXISTS vote_audit_log (
		vote_id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		associate_id TEXT NOT NULL,
		vote_option TEXT NOT NULL,
		voted_at DATETIME NOT NULL,
		recorded_at DATETIME NOT NULL
	)`,
}
