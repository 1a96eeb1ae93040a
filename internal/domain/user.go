package domain

// FieldPassword is never returned by the users resource.
const FieldPassword = "password"

// FieldSyncStatus marks client-synchronised records (quiz results, progress).
const FieldSyncStatus = "sync_status"
