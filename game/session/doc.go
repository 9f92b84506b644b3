// Package session stores match sessions.
//
// Manager keeps sessions in memory under lowercased 4-character hex IDs and
// implements service.SessionManager. With a SessionPersistence attached it
// writes sessions through on create and Save, and lazily loads sessions that
// are not in memory.
//
// Two backends share one JSON encoding (PersistedSessionData):
//
//	fp, _ := session.NewFilePersistence("sessions", scenarios)
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	rp, _ := session.NewRedisPersistence(client, "grid-tactics", 24*time.Hour, scenarios)
//
//	manager := session.NewManagerWithPersistence(rp)
//
// A persisted session references its scenario by ID; loading re-reads the
// scenario and restores the saved MatchState onto a fresh match.
package session
