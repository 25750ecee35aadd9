// Package sqlite exposes an embedded SQLite database to script code as a
// natively implemented module. It demonstrates the full native surface:
// handler-based methods, native data attachment for resource lifetime, and
// script-visible exceptions for operational failures.
//
// Script shape:
//
//	var db = sqlite.open(path)
//	db.exec("CREATE TABLE t (a, b)")
//	var n = db.exec("INSERT INTO t VALUES (?, ?)", 1, "x") // rows affected
//	var rows = db.query("SELECT * FROM t")                 // JSON text
//	db.close()
//
// A database object holds its *sql.DB through a native attachment; dropping
// the last reference without calling close releases the connection when the
// engine collects the object.
package sqlite

import (
	"database/sql"
	"encoding/json"

	_ "github.com/mattn/go-sqlite3"

	"github.com/wippyai/jsbind"
	"github.com/wippyai/jsbind/binding"
)

// Open databases keyed by the attachment id stored on the script object.
// The binding layer is single-threaded, so plain map access is safe.
var (
	databases = make(map[uintptr]*sql.DB)
	nextID    uintptr
)

// Register installs the sqlite module object on target, normally the global
// object.
func Register(target *binding.Value) {
	mod := binding.NewObject()
	defer mod.Free()

	mod.SetMethod("open", open)
	target.SetProperty("sqlite", mod)
}

func open(c *binding.CallInfo) {
	if !c.Check(c.ArgLen() == 1 && c.Arg(0).IsString()) {
		return
	}

	db, err := sql.Open("sqlite3", c.Arg(0).GetString())
	if err != nil {
		c.ThrowError(jsbind.ErrorPlain, err.Error())
		return
	}

	nextID++
	id := nextID
	databases[id] = db

	obj := binding.NewObject()
	defer obj.Free()
	obj.SetNative(id, func(ptr uintptr) {
		if db, ok := databases[ptr]; ok {
			db.Close()
			delete(databases, ptr)
		}
	})
	obj.SetMethod("exec", exec)
	obj.SetMethod("query", query)
	obj.SetMethod("close", closeDB)

	c.Return(obj)
}

// receiver resolves the database attached to the method receiver. It throws
// and returns nil when the receiver is not an open database.
func receiver(c *binding.CallInfo) *sql.DB {
	db, ok := databases[c.This().GetNative()]
	if !ok {
		c.ThrowError(jsbind.ErrorPlain, "database is closed")
		return nil
	}
	return db
}

// bindArgs converts trailing script arguments into driver parameters.
func bindArgs(c *binding.CallInfo) []any {
	params := make([]any, 0, c.ArgLen()-1)
	for i := uint16(1); i < c.ArgLen(); i++ {
		arg := c.Arg(i)
		switch {
		case arg.IsNull(), arg.IsUndefined():
			params = append(params, nil)
		case arg.IsBoolean():
			params = append(params, arg.GetBoolean())
		case arg.IsNumber():
			params = append(params, arg.GetNumber())
		default:
			params = append(params, arg.GetString())
		}
	}
	return params
}

func exec(c *binding.CallInfo) {
	if !c.Check(c.ArgLen() >= 1 && c.Arg(0).IsString()) {
		return
	}
	db := receiver(c)
	if db == nil {
		return
	}

	res, err := db.Exec(c.Arg(0).GetString(), bindArgs(c)...)
	if err != nil {
		c.ThrowError(jsbind.ErrorPlain, err.Error())
		return
	}

	affected, _ := res.RowsAffected()
	v := binding.NewNumber(float64(affected))
	defer v.Free()
	c.Return(v)
}

func query(c *binding.CallInfo) {
	if !c.Check(c.ArgLen() >= 1 && c.Arg(0).IsString()) {
		return
	}
	db := receiver(c)
	if db == nil {
		return
	}

	rows, err := db.Query(c.Arg(0).GetString(), bindArgs(c)...)
	if err != nil {
		c.ThrowError(jsbind.ErrorPlain, err.Error())
		return
	}
	defer rows.Close()

	encoded, err := encodeRows(rows)
	if err != nil {
		c.ThrowError(jsbind.ErrorPlain, err.Error())
		return
	}

	v := binding.NewString(encoded)
	defer v.Free()
	c.Return(v)
}

func closeDB(c *binding.CallInfo) {
	id := c.This().GetNative()
	if db, ok := databases[id]; ok {
		db.Close()
		delete(databases, id)
	}
	// Closing twice is a no-op, matching sql.DB semantics.
}

// encodeRows renders a result set as a JSON array of column-keyed objects.
func encodeRows(rows *sql.Rows) (string, error) {
	cols, err := rows.Columns()
	if err != nil {
		return "", err
	}

	out := make([]map[string]any, 0)
	values := make([]any, len(cols))
	scan := make([]any, len(cols))
	for i := range values {
		scan[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return "", err
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			switch v := values[i].(type) {
			case []byte:
				row[col] = string(v)
			default:
				row[col] = v
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	encoded, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
