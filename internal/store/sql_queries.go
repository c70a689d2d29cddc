package store

const (
	queryUpsertRecord = `INSERT INTO records (collection, id, payload, updated_at, deleted)
    VALUES (?, ?, ?, ?, ?)
    ON CONFLICT (collection, id) DO UPDATE SET
        payload    = excluded.payload,
        updated_at = excluded.updated_at,
        deleted    = excluded.deleted;`

	queryGetRecord = `SELECT collection, id, payload, updated_at, deleted
    FROM records
    WHERE collection = ? AND id = ?;`

	querySoftDeleteRecord = `UPDATE records
    SET deleted = TRUE, updated_at = ?
    WHERE collection = ? AND id = ?;`

	queryAppendOperation = `INSERT INTO sync_queue (
        op_id,
        kind,
        collection,
        record_id,
        payload,
        status,
        enqueued_at,
        started_at,
        completed_at,
        error,
        retry_available
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	queryGetOperation = `SELECT seq, op_id, kind, collection, record_id, payload, status,
        enqueued_at, started_at, completed_at, error, retry_available
    FROM sync_queue
    WHERE op_id = ?;`

	queryUpdateOperation = `UPDATE sync_queue
    SET kind = ?, collection = ?, record_id = ?, payload = ?, status = ?,
        enqueued_at = ?, started_at = ?, completed_at = ?, error = ?, retry_available = ?
    WHERE op_id = ?;`

	queryDeleteOperation = `DELETE FROM sync_queue
    WHERE op_id = ?;`

	queryResetRunning = `UPDATE sync_queue
    SET status = ?, started_at = NULL, retry_available = TRUE
    WHERE status = ?;`

	queryPruneSynced = `DELETE FROM sync_queue
    WHERE status = ? AND completed_at IS NOT NULL AND completed_at < ?;`
)
