package sequencer

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"go-wander/debug"
	"go-wander/music"
)

// Archive persists every composed measure to a sqlite file so past sessions
// can be listed and exported later.
type Archive struct {
	db *sql.DB
}

// SessionInfo summarises one archived session.
type SessionInfo struct {
	ID       uuid.UUID
	Measures int
	Started  time.Time
}

const archiveSchema = `
create table if not exists measures
  (
	  id integer not null primary key,
	  session text not null,
	  idx integer not null,
	  low text,
	  mid text,
	  melody text,
	  created_at integer not null
  );
create index if not exists measures_session on measures(session, idx);
`

func OpenArchive(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening archive %s", path)
	}
	if _, err := db.Exec(archiveSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating archive schema")
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Record stores measure m as entry idx of session.
func (a *Archive) Record(session uuid.UUID, idx int, m music.Measure) error {
	low, err := json.Marshal(m.Low)
	if err != nil {
		return errors.Wrap(err, "marshal low")
	}
	mid, err := json.Marshal(m.Mid)
	if err != nil {
		return errors.Wrap(err, "marshal mid")
	}
	melody, err := json.Marshal(m.Melody)
	if err != nil {
		return errors.Wrap(err, "marshal melody")
	}
	_, err = a.db.Exec(
		"insert into measures(session, idx, low, mid, melody, created_at) values(?, ?, ?, ?, ?, ?)",
		session.String(), idx, string(low), string(mid), string(melody), time.Now().UnixNano(),
	)
	return errors.Wrap(err, "insert measure")
}

// Attach records every measure appended to log under a fresh session id.
func (a *Archive) Attach(log *Log) uuid.UUID {
	id := uuid.New()
	log.Subscribe(func(idx int, m music.Measure) {
		if err := a.Record(id, idx, m); err != nil {
			debug.Log("archive", "record %s/%d: %v", id, idx, err)
		}
	})
	return id
}

// Sessions lists archived sessions, newest first.
func (a *Archive) Sessions() ([]SessionInfo, error) {
	rows, err := a.db.Query(
		"select session, count(*), min(created_at) from measures group by session order by min(created_at) desc",
	)
	if err != nil {
		return nil, errors.Wrap(err, "query sessions")
	}
	defer rows.Close()

	var out []SessionInfo
	for rows.Next() {
		var (
			id      string
			count   int
			started int64
		)
		if err := rows.Scan(&id, &count, &started); err != nil {
			return nil, errors.Wrap(err, "scan session")
		}
		sid, err := uuid.Parse(id)
		if err != nil {
			debug.Log("archive", "skipping bad session id %q", id)
			continue
		}
		out = append(out, SessionInfo{ID: sid, Measures: count, Started: time.Unix(0, started)})
	}
	return out, errors.Wrap(rows.Err(), "iterate sessions")
}

// Load returns the measures of session in order.
func (a *Archive) Load(session uuid.UUID) ([]music.Measure, error) {
	rows, err := a.db.Query(
		"select low, mid, melody from measures where session = ? order by idx",
		session.String(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "query measures")
	}
	defer rows.Close()

	var out []music.Measure
	for rows.Next() {
		var low, mid, melody string
		if err := rows.Scan(&low, &mid, &melody); err != nil {
			return nil, errors.Wrap(err, "scan measure")
		}
		var m music.Measure
		if err := json.Unmarshal([]byte(low), &m.Low); err != nil {
			return nil, errors.Wrap(err, "unmarshal low")
		}
		if err := json.Unmarshal([]byte(mid), &m.Mid); err != nil {
			return nil, errors.Wrap(err, "unmarshal mid")
		}
		if err := json.Unmarshal([]byte(melody), &m.Melody); err != nil {
			return nil, errors.Wrap(err, "unmarshal melody")
		}
		out = append(out, m)
	}
	return out, errors.Wrap(rows.Err(), "iterate measures")
}
