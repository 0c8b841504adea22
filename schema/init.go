// Package schema: safe database initialization — create only missing tables, never drop or overwrite.

package schema

import (
	"database/sql"

	"go.uber.org/zap"
)

// InitializeDatabase ensures all tables exist. Checks INFORMATION_SCHEMA.TABLES and
// creates only missing tables, respecting foreign-key ordering:
// branches → lines_of_business → users → complaint_statuses → complaints →
// complaint_actions → complaint_attachments → notifications → email_outbox.
// Does not drop or recreate tables; does not remove data.
func InitializeDatabase(db *sql.DB, log *zap.SugaredLogger) {
	tables := []struct {
		name   string
		create func(*sql.DB, *zap.SugaredLogger)
	}{
		{"branches", createBranchesTable},
		{"lines_of_business", createLinesOfBusinessTable},
		{"users", createUsersTable},
		{"complaint_statuses", createComplaintStatusesTable},
		{"complaints", createComplaintsTable},
		{"complaint_actions", createComplaintActionsTable},
		{"complaint_attachments", createComplaintAttachmentsTable},
		{"notifications", createNotificationsTable},
		{"email_outbox", createEmailOutboxTable},
	}

	for _, t := range tables {
		exists, err := tableExists(db, t.name)
		if err != nil {
			log.Fatalf("[SCHEMA] Failed to check if table %s exists: %v", t.name, err)
		}
		if exists {
			log.Debugf("[SCHEMA] %s table exists", t.name)
			continue
		}
		t.create(db, log)
		log.Infof("[SCHEMA] created %s table", t.name)
	}
}

func tableExists(db *sql.DB, name string) (bool, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
	`
	if err := db.QueryRow(query, name).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func mustExec(db *sql.DB, log *zap.SugaredLogger, table, q string) {
	if _, err := db.Exec(q); err != nil {
		log.Fatalf("[SCHEMA] Failed to create table %s: %v", table, err)
	}
}

func createBranchesTable(db *sql.DB, log *zap.SugaredLogger) {
	q := `
CREATE TABLE IF NOT EXISTS branches (
    branch_id BIGINT PRIMARY KEY AUTO_INCREMENT,
    name VARCHAR(255) UNIQUE NOT NULL,
    description TEXT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`
	mustExec(db, log, "branches", q)
}

func createLinesOfBusinessTable(db *sql.DB, log *zap.SugaredLogger) {
	q := `
CREATE TABLE IF NOT EXISTS lines_of_business (
    line_of_business_id BIGINT PRIMARY KEY AUTO_INCREMENT,
    name VARCHAR(255) UNIQUE NOT NULL,
    description TEXT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`
	mustExec(db, log, "lines_of_business", q)
}

func createUsersTable(db *sql.DB, log *zap.SugaredLogger) {
	q := `
CREATE TABLE IF NOT EXISTS users (
    user_id BIGINT PRIMARY KEY AUTO_INCREMENT,
    name VARCHAR(255) NOT NULL,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(255) NOT NULL,
    role ENUM('ADMIN', 'AGENT') NOT NULL DEFAULT 'AGENT',
    branch_id BIGINT NULL COMMENT 'Required for assignment eligibility',
    line_of_business_id BIGINT NULL COMMENT 'Required for assignment eligibility',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (branch_id) REFERENCES branches(branch_id) ON DELETE SET NULL,
    FOREIGN KEY (line_of_business_id) REFERENCES lines_of_business(line_of_business_id) ON DELETE SET NULL,
    INDEX idx_role_branch_lob (role, branch_id, line_of_business_id),
    INDEX idx_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`
	mustExec(db, log, "users", q)
}

func createComplaintStatusesTable(db *sql.DB, log *zap.SugaredLogger) {
	q := `
CREATE TABLE IF NOT EXISTS complaint_statuses (
    status_id BIGINT PRIMARY KEY AUTO_INCREMENT,
    name VARCHAR(50) UNIQUE NOT NULL,
    description TEXT NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`
	mustExec(db, log, "complaint_statuses", q)
}

func createComplaintsTable(db *sql.DB, log *zap.SugaredLogger) {
	q := `
CREATE TABLE IF NOT EXISTS complaints (
    complaint_id BIGINT PRIMARY KEY AUTO_INCREMENT,
    complaint_number VARCHAR(50) UNIQUE NOT NULL COMMENT 'Public-facing complaint number',
    customer_name VARCHAR(255) NOT NULL,
    customer_id VARCHAR(100) NOT NULL,
    policy_number VARCHAR(100) NOT NULL,
    policy_type VARCHAR(100) NOT NULL DEFAULT 'General',
    description TEXT NOT NULL,
    channel VARCHAR(50) NOT NULL DEFAULT 'WEB',
    status_id BIGINT NOT NULL,
    branch_id BIGINT NOT NULL,
    line_of_business_id BIGINT NOT NULL,
    assigned_to_id BIGINT NULL,
    created_by_id BIGINT NOT NULL,
    due_date TIMESTAMP NOT NULL COMMENT 'Set once at creation, never recalculated',
    resolved_at TIMESTAMP NULL COMMENT 'Set at most once, on transition to RESOLVED',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NULL,
    FOREIGN KEY (status_id) REFERENCES complaint_statuses(status_id) ON DELETE RESTRICT,
    FOREIGN KEY (branch_id) REFERENCES branches(branch_id) ON DELETE RESTRICT,
    FOREIGN KEY (line_of_business_id) REFERENCES lines_of_business(line_of_business_id) ON DELETE RESTRICT,
    FOREIGN KEY (assigned_to_id) REFERENCES users(user_id) ON DELETE SET NULL,
    FOREIGN KEY (created_by_id) REFERENCES users(user_id) ON DELETE RESTRICT,
    INDEX idx_complaint_number (complaint_number),
    INDEX idx_status (status_id),
    INDEX idx_assigned_to (assigned_to_id),
    INDEX idx_branch_lob (branch_id, line_of_business_id),
    INDEX idx_due_date (due_date),
    INDEX idx_created_at (created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`
	mustExec(db, log, "complaints", q)
}

func createComplaintActionsTable(db *sql.DB, log *zap.SugaredLogger) {
	q := `
CREATE TABLE IF NOT EXISTS complaint_actions (
    action_id BIGINT PRIMARY KEY AUTO_INCREMENT,
    complaint_id BIGINT NOT NULL,
    user_id BIGINT NOT NULL,
    description TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (complaint_id) REFERENCES complaints(complaint_id) ON DELETE CASCADE,
    FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE RESTRICT,
    INDEX idx_complaint_id (complaint_id),
    INDEX idx_created_at (created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`
	mustExec(db, log, "complaint_actions", q)
}

func createComplaintAttachmentsTable(db *sql.DB, log *zap.SugaredLogger) {
	q := `
CREATE TABLE IF NOT EXISTS complaint_attachments (
    attachment_id BIGINT PRIMARY KEY AUTO_INCREMENT,
    complaint_id BIGINT NOT NULL,
    file_name VARCHAR(500) NOT NULL,
    file_path VARCHAR(1000) NOT NULL,
    file_type VARCHAR(100) NOT NULL,
    file_size BIGINT NOT NULL DEFAULT 0,
    uploaded_by_id BIGINT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (complaint_id) REFERENCES complaints(complaint_id) ON DELETE CASCADE,
    FOREIGN KEY (uploaded_by_id) REFERENCES users(user_id) ON DELETE RESTRICT,
    INDEX idx_complaint_id (complaint_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`
	mustExec(db, log, "complaint_attachments", q)
}

func createNotificationsTable(db *sql.DB, log *zap.SugaredLogger) {
	q := `
CREATE TABLE IF NOT EXISTS notifications (
    notification_id BIGINT PRIMARY KEY AUTO_INCREMENT,
    user_id BIGINT NOT NULL,
    complaint_id BIGINT NULL,
    type VARCHAR(50) NOT NULL,
    title VARCHAR(255) NOT NULL,
    message TEXT NOT NULL,
    is_read BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE,
    FOREIGN KEY (complaint_id) REFERENCES complaints(complaint_id) ON DELETE SET NULL,
    INDEX idx_user_read (user_id, is_read),
    INDEX idx_complaint_type_created (complaint_id, type, created_at),
    INDEX idx_user_type_created (user_id, type, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`
	mustExec(db, log, "notifications", q)
}

func createEmailOutboxTable(db *sql.DB, log *zap.SugaredLogger) {
	q := `
CREATE TABLE IF NOT EXISTS email_outbox (
    email_id BIGINT PRIMARY KEY AUTO_INCREMENT,
    complaint_id BIGINT NULL,
    recipients TEXT NOT NULL COMMENT 'Comma-separated recipient list',
    subject VARCHAR(500) NOT NULL,
    body TEXT NOT NULL,
    status ENUM('pending', 'sent', 'failed', 'retrying') NOT NULL DEFAULT 'pending',
    retry_count INT NOT NULL DEFAULT 0,
    max_retries INT NOT NULL DEFAULT 3,
    next_retry_at TIMESTAMP NULL,
    sent_at TIMESTAMP NULL,
    error_message TEXT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    INDEX idx_status_next_retry (status, next_retry_at),
    INDEX idx_created_at (created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`
	mustExec(db, log, "email_outbox", q)
}
