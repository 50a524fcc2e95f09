package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/kailabs/kapsel/internal/capsule"
	"github.com/kailabs/kapsel/internal/errors"
	"github.com/kailabs/kapsel/internal/index"
)

// capsuleColumns is the column list shared by every capsule SELECT.
const capsuleColumns = `id, summary, details, confidence, sources_json,
	domain, discipline, tags_json, related_json,
	discovered_by, discovery_date, discovery_method, original_source,
	verification_status, version, modified_date,
	modifications_json, improvement_notes_json, fusion_json, created_at`

// Insert stores a new capsule. Returns a CONFLICT error if the id exists.
func Insert(db *sql.DB, c *capsule.Capsule) error {
	fusionJSON, err := marshalFusion(c.Fusion)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO capsules (
			id, summary, details, confidence, sources_json,
			domain, domain_norm, discipline, discipline_norm,
			tags_json, related_json,
			discovered_by, discovery_date, discovery_method, original_source,
			verification_status, version, modified_date,
			modifications_json, improvement_notes_json, fusion_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = db.Exec(query,
		c.ID, c.CoreInsight.Summary, c.CoreInsight.Details, c.CoreInsight.Confidence,
		marshalStrings(c.CoreInsight.Sources),
		c.Context.Domain, capsule.Normalize(c.Context.Domain),
		c.Context.Discipline, capsule.Normalize(c.Context.Discipline),
		marshalStrings(c.Context.Tags), marshalStrings(c.Context.RelatedCapsuleIDs),
		c.Origin.DiscoveredBy, c.Origin.DiscoveryDate, c.Origin.DiscoveryMethod, c.Origin.OriginalSource,
		string(c.Origin.VerificationStatus), c.Evolution.Version, c.Evolution.ModifiedDate,
		marshalStrings(c.Evolution.Modifications), marshalStrings(c.Evolution.ImprovementNotes),
		fusionJSON, c.CreatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewConflict(c.ID)
		}
		return errors.NewInternal(err)
	}

	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetByID retrieves a capsule by its id. Absent ids are a NOT_FOUND
// error, never a nil result.
func GetByID(db *sql.DB, id string) (*capsule.Capsule, error) {
	row := db.QueryRow(`SELECT `+capsuleColumns+` FROM capsules WHERE id = ?`, id)
	c, err := scanCapsule(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return c, nil
}

// UpdateEvolution persists an update to the mutable capsule fields:
// details, version, modified date, modification log, improvement notes.
// Does NOT change: id, context, origin, created_at.
func UpdateEvolution(db *sql.DB, c *capsule.Capsule) error {
	query := `
		UPDATE capsules
		SET details = ?, version = ?, modified_date = ?,
			modifications_json = ?, improvement_notes_json = ?
		WHERE id = ?
	`

	result, err := db.Exec(query,
		c.CoreInsight.Details, c.Evolution.Version, c.Evolution.ModifiedDate,
		marshalStrings(c.Evolution.Modifications), marshalStrings(c.Evolution.ImprovementNotes),
		c.ID,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(c.ID)
	}

	return nil
}

// SetVerification moves a capsule's verification status.
func SetVerification(db *sql.DB, id string, status capsule.VerificationStatus) error {
	result, err := db.Exec(`UPDATE capsules SET verification_status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}

	return nil
}

// ListSummaries returns capsule summaries in insertion order (rowid),
// optionally filtered by normalized domain, with the total match count.
func ListSummaries(db *sql.DB, domainNorm *string, limit, offset int) ([]capsule.Summary, int, error) {
	where := ""
	args := []any{}
	if domainNorm != nil {
		where = " WHERE domain_norm = ?"
		args = append(args, *domainNorm)
	}

	var total int
	if err := db.QueryRow(`SELECT COUNT(*) FROM capsules`+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := `SELECT ` + capsuleColumns + ` FROM capsules` + where + ` ORDER BY rowid LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	summaries := []capsule.Summary{}
	for rows.Next() {
		c, err := ScanCapsuleFromRows(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		summaries = append(summaries, c.ToSummary())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	return summaries, total, nil
}

// GetSummariesByIDs returns summaries for the given ids, preserving the
// input order. Ids with no row are skipped.
func GetSummariesByIDs(db *sql.DB, ids []string) ([]capsule.Summary, error) {
	if len(ids) == 0 {
		return []capsule.Summary{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := db.Query(`SELECT `+capsuleColumns+` FROM capsules WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	byID := make(map[string]capsule.Summary, len(ids))
	for rows.Next() {
		c, err := ScanCapsuleFromRows(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		byID[c.ID] = c.ToSummary()
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	summaries := make([]capsule.Summary, 0, len(byID))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			summaries = append(summaries, s)
		}
	}
	return summaries, nil
}

// InsertCollision appends a record to the collision log and fills in the
// assigned sequence number.
func InsertCollision(db *sql.DB, col *capsule.Collision) error {
	result, err := db.Exec(`
		INSERT INTO collisions (capsule_a, capsule_b, collision_type, overlap_count, strength, insights_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		col.CapsuleA, col.CapsuleB, string(col.Type), col.OverlapCount, col.Strength,
		marshalStrings(col.Insights), col.CreatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return errors.NewInternal(err)
	}
	col.Seq = seq

	return nil
}

// ListCollisions returns collision log entries, newest first.
func ListCollisions(db *sql.DB, limit, offset int) ([]capsule.Collision, int, error) {
	var total int
	if err := db.QueryRow(`SELECT COUNT(*) FROM collisions`).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	rows, err := db.Query(`
		SELECT seq, capsule_a, capsule_b, collision_type, overlap_count, strength, insights_json, created_at
		FROM collisions ORDER BY seq DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	collisions := []capsule.Collision{}
	for rows.Next() {
		var (
			col          capsule.Collision
			colType      string
			insightsJSON sql.NullString
		)
		if err := rows.Scan(&col.Seq, &col.CapsuleA, &col.CapsuleB, &colType,
			&col.OverlapCount, &col.Strength, &insightsJSON, &col.CreatedAt); err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		col.Type = capsule.CollisionType(colType)
		col.Insights, err = unmarshalStrings(insightsJSON)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		collisions = append(collisions, col)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	return collisions, total, nil
}

// Counts returns store totals for the status operation.
func Counts(db *sql.DB) (capsules, collisions int, err error) {
	if err := db.QueryRow(`SELECT COUNT(*) FROM capsules`).Scan(&capsules); err != nil {
		return 0, 0, errors.NewInternal(err)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM collisions`).Scan(&collisions); err != nil {
		return 0, 0, errors.NewInternal(err)
	}
	return capsules, collisions, nil
}

// DistinctDomains returns the sorted set of normalized domains in the store.
func DistinctDomains(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT DISTINCT domain_norm FROM capsules ORDER BY domain_norm`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	domains := []string{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, errors.NewInternal(err)
		}
		domains = append(domains, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return domains, nil
}

// AllKeywordSeeds loads the indexable fields of every capsule, used to
// rebuild the inverted index on startup.
func AllKeywordSeeds(db *sql.DB) ([]index.Seed, error) {
	rows, err := db.Query(`SELECT id, domain, discipline, tags_json FROM capsules`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	seeds := []index.Seed{}
	for rows.Next() {
		var (
			s        index.Seed
			tagsJSON sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Domain, &s.Discipline, &tagsJSON); err != nil {
			return nil, errors.NewInternal(err)
		}
		s.Tags, err = unmarshalStrings(tagsJSON)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		seeds = append(seeds, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return seeds, nil
}

// StreamForExport returns rows over all capsules in insertion order.
// Callers must Close the rows and scan with ScanCapsuleFromRows.
func StreamForExport(ctx context.Context, db *sql.DB) (*sql.Rows, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+capsuleColumns+` FROM capsules ORDER BY rowid`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return rows, nil
}

// ScanCapsuleFromRows scans the current row of a multi-row result set.
func ScanCapsuleFromRows(rows *sql.Rows) (*capsule.Capsule, error) {
	return scanCapsule(rows)
}

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanCapsule scans a single row into a Capsule struct.
func scanCapsule(row rowScanner) (*capsule.Capsule, error) {
	var (
		c           capsule.Capsule
		sourcesJSON sql.NullString
		tagsJSON    sql.NullString
		relatedJSON sql.NullString
		method      sql.NullString
		source      sql.NullString
		status      string
		modsJSON    sql.NullString
		notesJSON   sql.NullString
		fusionJSON  sql.NullString
	)

	err := row.Scan(
		&c.ID, &c.CoreInsight.Summary, &c.CoreInsight.Details, &c.CoreInsight.Confidence, &sourcesJSON,
		&c.Context.Domain, &c.Context.Discipline, &tagsJSON, &relatedJSON,
		&c.Origin.DiscoveredBy, &c.Origin.DiscoveryDate, &method, &source,
		&status, &c.Evolution.Version, &c.Evolution.ModifiedDate,
		&modsJSON, &notesJSON, &fusionJSON, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if method.Valid {
		c.Origin.DiscoveryMethod = method.String
	}
	if source.Valid {
		c.Origin.OriginalSource = source.String
	}
	c.Origin.VerificationStatus = capsule.VerificationStatus(status)

	if c.CoreInsight.Sources, err = unmarshalStrings(sourcesJSON); err != nil {
		return nil, err
	}
	if c.Context.Tags, err = unmarshalStrings(tagsJSON); err != nil {
		return nil, err
	}
	if c.Context.RelatedCapsuleIDs, err = unmarshalStrings(relatedJSON); err != nil {
		return nil, err
	}
	if c.Evolution.Modifications, err = unmarshalStrings(modsJSON); err != nil {
		return nil, err
	}
	if c.Evolution.ImprovementNotes, err = unmarshalStrings(notesJSON); err != nil {
		return nil, err
	}

	if fusionJSON.Valid && fusionJSON.String != "" {
		var f capsule.Fusion
		if err := json.Unmarshal([]byte(fusionJSON.String), &f); err != nil {
			return nil, err
		}
		c.Fusion = &f
	}

	return &c, nil
}

// marshalStrings encodes a string slice as a JSON column value.
func marshalStrings(vals []string) sql.NullString {
	if len(vals) == 0 {
		return sql.NullString{}
	}
	data, err := json.Marshal(vals)
	if err != nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(data), Valid: true}
}

// unmarshalStrings decodes a JSON string-slice column value.
func unmarshalStrings(ns sql.NullString) ([]string, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var vals []string
	if err := json.Unmarshal([]byte(ns.String), &vals); err != nil {
		return nil, err
	}
	return vals, nil
}

// marshalFusion encodes the optional fusion block as a JSON column value.
func marshalFusion(f *capsule.Fusion) (sql.NullString, error) {
	if f == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(f)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
