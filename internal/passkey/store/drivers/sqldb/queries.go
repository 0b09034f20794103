package sqldb

const (
	userColumns = `id, display_name, role, active, last_seen_at, created_at, updated_at`

	createUser = `INSERT INTO users (id, display_name, role, active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`
	getUserByID   = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	touchLastSeen = `UPDATE users SET last_seen_at = ?, updated_at = ? WHERE id = ?`
	setUserActive = `UPDATE users SET active = ?, updated_at = ? WHERE id = ?`
	deleteUser    = `DELETE FROM users WHERE id = ?`
)

const (
	inviteColumns = `id, token_hash, role, created_by, expires_at, used, used_by, used_at, created_at`

	createInvite = `INSERT INTO invites (id, token_hash, role, created_by, expires_at, used, created_at)
VALUES (?, ?, ?, ?, ?, FALSE, ?)`
	getInviteByID        = `SELECT ` + inviteColumns + ` FROM invites WHERE id = ?`
	getInviteByTokenHash = `SELECT ` + inviteColumns + ` FROM invites WHERE token_hash = ?`
	markInviteUsed       = `UPDATE invites SET used = TRUE, used_by = ?, used_at = ? WHERE id = ? AND used = FALSE`
)

const (
	challengeColumns = `id, challenge, type, invite_id, user_id, display_name, expires_at, created_at`

	createChallenge = `INSERT INTO challenges (` + challengeColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	getChallenge    = `SELECT ` + challengeColumns + ` FROM challenges WHERE id = ?`
	deleteChallenge = `DELETE FROM challenges WHERE id = ?`
)

const (
	credentialColumns = `id, user_id, credential_id, public_key, algorithm, sign_count, aaguid, transports, revoked, last_used_at, created_at`

	createCredential = `INSERT INTO credentials (id, user_id, credential_id, public_key, algorithm, sign_count, aaguid, transports, revoked, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, FALSE, ?)`
	getCredentialByCredentialID = `SELECT ` + credentialColumns + ` FROM credentials WHERE credential_id = ?`
	listActiveCredentialsByUser = `SELECT ` + credentialColumns + ` FROM credentials
WHERE user_id = ? AND revoked = FALSE ORDER BY created_at, id`
	updateSignCount  = `UPDATE credentials SET sign_count = ?, last_used_at = ? WHERE id = ? AND sign_count < ?`
	revokeCredential = `UPDATE credentials SET revoked = TRUE WHERE id = ?`
)
