// Package hostext is a native-ABI demo: a persisted key/value `db` global
// object backed by a real third-party storage engine, showing an embedder
// how to expose a stateful external resource through the same
// native-function registration every internal/builtins constructor uses,
// without reaching into the interpreter's internals.
//
// Grounded on sentra-language-sentra/internal/database/db_manager.go's
// sql.Open/Ping/SetMaxOpenConns connection-setup shape and
// funvibe-funxy/internal/modules/virtual_packages_data.go's style of handing
// a native Go resource to the scripting layer as a plain object of methods.
package hostext

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/apfeltee/ecma5go/internal/builtins"
	"github.com/apfeltee/ecma5go/internal/object"
	"github.com/apfeltee/ecma5go/internal/script"
)

// Store wraps a single SQLite-backed key/value table. One Store is meant to
// back one `db` global; callers needing isolation between script.Context
// instances should open one Store per Context.
type Store struct {
	db *sql.DB
}

// Open creates (if needed) a "kv" table at path and returns a Store ready to
// back a `db` global. path is passed straight through to modernc.org/sqlite
// as the DSN, so ":memory:" works for a throwaway in-process store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("hostext: opening %q: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("hostext: pinging %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers anyway
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("hostext: creating kv table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying *sql.DB. Safe to call once after the owning
// script.Context is destroyed.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) get(key string) (string, bool, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *Store) put(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO kv(key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

func (s *Store) delete(key string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Register installs a `db` object on cs's global with get(key)/put(key,
// value)/delete(key) native methods bound to store, through the same
// add_value/add_function host ABI any other native binding uses. get
// returns undefined for a missing key rather than throwing, matching
// property-lookup-on-a-plain-object semantics a script author would expect
// from a map-like built-in.
func Register(cs *script.Context, store *Store) {
	ctx := cs.RawContext()
	dbObj := object.New(object.KindPlain, ctx.Proto.Object)
	this := object.Value{Tag: object.TagObject, Object: dbObj}

	addMethod := func(name string, argc int, fn func(ctx *object.Context) object.Value) {
		f := builtins.NativeFunctionAt(ctx, name, argc, fn)
		ctx.Put(dbObj, object.KeyValue(ctx.Keys.MakeFromString(name)), object.Value{Tag: object.TagFunction, Object: f, Flags: object.FlagHidden}, this, false)
	}

	addMethod("get", 1, func(ctx *object.Context) object.Value {
		key := ctx.ToString(argAt(ctx, 0))
		v, ok, err := store.get(key)
		if err != nil {
			panic(ctx.NewTypeError("db.get: " + err.Error()))
		}
		if !ok {
			return object.Undefined
		}
		return object.InlineString(v)
	})
	addMethod("put", 2, func(ctx *object.Context) object.Value {
		key := ctx.ToString(argAt(ctx, 0))
		value := ctx.ToString(argAt(ctx, 1))
		if err := store.put(key, value); err != nil {
			panic(ctx.NewTypeError("db.put: " + err.Error()))
		}
		return object.Undefined
	})
	addMethod("delete", 1, func(ctx *object.Context) object.Value {
		key := ctx.ToString(argAt(ctx, 0))
		deleted, err := store.delete(key)
		if err != nil {
			panic(ctx.NewTypeError("db.delete: " + err.Error()))
		}
		return object.Bool(deleted)
	})

	cs.AddValue("db", this, object.FlagHidden)
}

func argAt(ctx *object.Context, i int) object.Value {
	if i < len(ctx.Args) {
		return ctx.Args[i]
	}
	return object.Undefined
}
