package store

// Persisted key namespace. These names are load-bearing: they must match the
// data already present in the key-value store, so none of them may change
// without a migration.
const (
	// KeyLegacyGroups holds the whole guest-group array in legacy mode, and
	// remains a best-effort shadow copy in entity mode.
	KeyLegacyGroups = "boda:groups"

	// KeyGroupIDs holds the JSON array of all known group ids (set semantics).
	KeyGroupIDs = "group:ids"

	KeyTables     = "config:tables"
	KeyBuses      = "config:buses"
	KeyPhotoRaces = "config:photo-races"

	KeyMigrationVersion     = "migration:version"
	KeyMigrationCompletedAt = "migration:completed-at"

	groupKeyPrefix  = "group:"
	tokenKeyPrefix  = "token:"
	backupKeyPrefix = "backup:"
)

// GroupKey is the entity-mode record key for a group id.
func GroupKey(id string) string { return groupKeyPrefix + id }

// TokenKey is the index key for a normalized token.
func TokenKey(normalizedToken string) string { return tokenKeyPrefix + normalizedToken }

// BackupKey is the snapshot key for a timestamp string.
func BackupKey(ts string) string { return backupKeyPrefix + ts }
