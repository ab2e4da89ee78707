package session

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/coachlogin/internal/client/models"
	"github.com/dmitrijs2005/coachlogin/internal/client/repositories/localstore"
	"github.com/dmitrijs2005/coachlogin/internal/common"
	"github.com/dmitrijs2005/coachlogin/internal/dbx"
)

var durableKeys = []string{
	common.DurableTokenKey,
	common.DurableRefreshTokenKey,
	common.DurableIsAuthenticatedKey,
}

// DurableSink stores the tokens and the authenticated flag in the SQLite
// local store, all in one transaction.
type DurableSink struct {
	db *sql.DB
}

var _ Sink = (*DurableSink)(nil)

func NewDurableSink(db *sql.DB) *DurableSink {
	return &DurableSink{db: db}
}

func (d *DurableSink) Name() string { return "durable" }

func (d *DurableSink) Write(ctx context.Context, s *models.Session) error {
	values := map[string]string{
		common.DurableTokenKey:           s.AccessToken,
		common.DurableRefreshTokenKey:    s.RefreshToken,
		common.DurableIsAuthenticatedKey: common.AuthenticatedValue,
	}
	return dbx.WithTx(ctx, d.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := localstore.NewSQLiteRepository(tx)
		for _, k := range durableKeys {
			if err := repo.Set(ctx, k, values[k]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *DurableSink) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, d.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := localstore.NewSQLiteRepository(tx)
		for _, k := range durableKeys {
			if err := repo.Delete(ctx, k); err != nil {
				return err
			}
		}
		return nil
	})
}

// DurableState is what the durable store currently says about the session.
type DurableState struct {
	Authenticated bool
	AccessToken   string
	RefreshToken  string
}

func (d *DurableSink) Read(ctx context.Context) (*DurableState, error) {
	values, err := localstore.NewSQLiteRepository(d.db).List(ctx)
	if err != nil {
		return nil, err
	}
	return &DurableState{
		Authenticated: values[common.DurableIsAuthenticatedKey] == common.AuthenticatedValue,
		AccessToken:   values[common.DurableTokenKey],
		RefreshToken:  values[common.DurableRefreshTokenKey],
	}, nil
}
