package explorers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrExplorerNotFound = errors.New("explorer not found")

// Explorer mirrors the identity provider's profile for a signed-in user.
type Explorer struct {
	ID          string    `json:"id"`
	FirebaseUID string    `json:"firebase_uid"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email,omitempty"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// EnsureSchema creates the explorers table when it does not exist yet.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	const q = `
create table if not exists explorers (
  id uuid primary key default gen_random_uuid(),
  firebase_uid text not null unique,
  display_name text,
  email text,
  photo_url text,
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now()
);
`
	if _, err := r.db.Exec(ctx, q); err != nil {
		return fmt.Errorf("ensure explorers schema: %w", err)
	}
	return nil
}

type UpsertExplorer struct {
	FirebaseUID string
	Email       string
	DisplayName string
	PhotoURL    string
}

// EnsureExplorer upserts the profile mirror for a Firebase user. Existing
// fields are preserved when the incoming value is blank.
func (r *Repo) EnsureExplorer(ctx context.Context, u UpsertExplorer) (*Explorer, error) {
	if u.FirebaseUID == "" {
		return nil, fmt.Errorf("firebase_uid required")
	}

	const q = `
insert into explorers (firebase_uid, email, display_name, photo_url, updated_at)
values ($1, nullif($2,''), nullif($3,''), nullif($4,''), now())
on conflict (firebase_uid) do update
set
  email = coalesce(excluded.email, explorers.email),
  display_name = coalesce(excluded.display_name, explorers.display_name),
  photo_url = coalesce(excluded.photo_url, explorers.photo_url),
  updated_at = now()
returning id::text, firebase_uid, coalesce(display_name,''), coalesce(email,''), coalesce(photo_url,''), created_at, updated_at;
`
	var e Explorer
	err := r.db.QueryRow(ctx, q, u.FirebaseUID, u.Email, u.DisplayName, u.PhotoURL).
		Scan(&e.ID, &e.FirebaseUID, &e.DisplayName, &e.Email, &e.PhotoURL, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("ensure explorer: %w", err)
	}
	return &e, nil
}

// GetByFirebaseUID returns the stored profile for a Firebase user.
func (r *Repo) GetByFirebaseUID(ctx context.Context, firebaseUID string) (*Explorer, error) {
	const q = `
select id::text, firebase_uid, coalesce(display_name,''), coalesce(email,''), coalesce(photo_url,''), created_at, updated_at
from explorers
where firebase_uid = $1;
`
	var e Explorer
	err := r.db.QueryRow(ctx, q, firebaseUID).
		Scan(&e.ID, &e.FirebaseUID, &e.DisplayName, &e.Email, &e.PhotoURL, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrExplorerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get explorer: %w", err)
	}
	return &e, nil
}
