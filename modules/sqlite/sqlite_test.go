package sqlite_test

import (
	"strings"
	"testing"

	"github.com/wippyai/jsbind/binding"
	"github.com/wippyai/jsbind/enginetest"
	"github.com/wippyai/jsbind/modules/sqlite"
)

func setup(t *testing.T) *binding.Value {
	t.Helper()
	binding.Init(enginetest.New())
	t.Cleanup(binding.Cleanup)

	global := binding.Global()
	t.Cleanup(global.Free)
	sqlite.Register(global)
	return global
}

// method invokes obj.name(args...) and fails the test on an exception.
func method(t *testing.T, obj *binding.Value, name string, args *binding.Args) *binding.Value {
	t.Helper()
	fn := obj.GetProperty(name)
	defer fn.Free()

	r := fn.Call(obj, args)
	defer r.Free()
	if r.IsException() {
		t.Fatalf("%s threw: %s", name, r.Value().GetString())
	}
	return r.Value().Copy()
}

// methodErr invokes obj.name(args...) expecting an exception and returns its
// message.
func methodErr(t *testing.T, obj *binding.Value, name string, args *binding.Args) string {
	t.Helper()
	fn := obj.GetProperty(name)
	defer fn.Free()

	r := fn.Call(obj, args)
	defer r.Free()
	if !r.IsException() {
		t.Fatalf("Expected %s to throw", name)
	}
	msg := r.Value().GetProperty("message")
	defer msg.Free()
	return msg.GetString()
}

func strArgs(items ...string) *binding.Args {
	args := binding.NewArgs(uint16(len(items)))
	for _, s := range items {
		v := binding.NewString(s)
		args.Add(v)
		v.Free()
	}
	return args
}

func openMemory(t *testing.T, global *binding.Value) *binding.Value {
	t.Helper()
	mod := global.GetProperty("sqlite")
	defer mod.Free()

	args := strArgs(":memory:")
	defer args.Free()
	db := method(t, mod, "open", args)
	t.Cleanup(db.Free)
	return db
}

func TestRegister_InstallsModule(t *testing.T) {
	global := setup(t)

	mod := global.GetProperty("sqlite")
	defer mod.Free()
	if !mod.IsObject() {
		t.Fatal("Expected sqlite module object on target")
	}

	open := mod.GetProperty("open")
	defer open.Free()
	if !open.IsFunction() {
		t.Fatal("Expected sqlite.open to be a function")
	}
}

func TestExecAndQuery(t *testing.T) {
	global := setup(t)
	db := openMemory(t, global)

	create := strArgs("CREATE TABLE t (a INTEGER, b TEXT)")
	defer create.Free()
	method(t, db, "exec", create).Free()

	insert := binding.NewArgs(3)
	defer insert.Free()
	stmt := binding.NewString("INSERT INTO t VALUES (?, ?)")
	insert.Add(stmt)
	stmt.Free()
	num := binding.NewNumber(1)
	insert.Add(num)
	num.Free()
	text := binding.NewString("x")
	insert.Add(text)
	text.Free()

	affected := method(t, db, "exec", insert)
	if affected.GetNumber() != 1 {
		t.Fatalf("Expected 1 row affected, got %v", affected.GetNumber())
	}
	affected.Free()

	sel := strArgs("SELECT a, b FROM t")
	defer sel.Free()
	rows := method(t, db, "query", sel)
	defer rows.Free()
	if got := rows.GetString(); got != `[{"a":1,"b":"x"}]` {
		t.Fatalf("Unexpected query result: %s", got)
	}
}

func TestQuery_EmptyResult(t *testing.T) {
	global := setup(t)
	db := openMemory(t, global)

	create := strArgs("CREATE TABLE t (a INTEGER)")
	defer create.Free()
	method(t, db, "exec", create).Free()

	sel := strArgs("SELECT a FROM t")
	defer sel.Free()
	rows := method(t, db, "query", sel)
	defer rows.Free()
	if rows.GetString() != "[]" {
		t.Fatalf("Expected empty JSON array, got %s", rows.GetString())
	}
}

func TestExec_BadStatementThrows(t *testing.T) {
	global := setup(t)
	db := openMemory(t, global)

	bad := strArgs("NOT REAL SQL")
	defer bad.Free()
	if msg := methodErr(t, db, "exec", bad); msg == "" {
		t.Fatal("Expected a diagnostic message from the driver")
	}
}

func TestClose_SubsequentUseThrows(t *testing.T) {
	global := setup(t)
	db := openMemory(t, global)

	method(t, db, "close", nil).Free()
	// close is idempotent
	method(t, db, "close", nil).Free()

	stmt := strArgs("SELECT 1")
	defer stmt.Free()
	if msg := methodErr(t, db, "exec", stmt); msg != "database is closed" {
		t.Fatalf("Expected closed-database error, got %q", msg)
	}
}

func TestOpen_ArgumentValidation(t *testing.T) {
	global := setup(t)

	mod := global.GetProperty("sqlite")
	defer mod.Free()

	open := mod.GetProperty("open")
	defer open.Free()

	r := open.Call(mod, nil)
	defer r.Free()
	if !r.IsException() {
		t.Fatal("Expected open() without a path to throw")
	}
	msg := r.Value().GetProperty("message")
	defer msg.Free()
	if !strings.HasPrefix(msg.GetString(), "Internal error") {
		t.Fatalf("Expected internal error, got %q", msg.GetString())
	}
}
