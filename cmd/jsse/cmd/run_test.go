package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

// TestRunProgram_File exercises runProgram directly, in-process, rather
// than shelling out via exec.Command.
func TestRunProgram_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "program.json")
	doc := `{"start":0,"end":0,"body":[{"type":"ExpressionStatement","expression":{"type":"Literal","kind":"number","numberValue":1}}]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("failed to write test program: %v", err)
	}

	evalAST = ""
	if err := runProgram(nil, []string{path}); err != nil {
		t.Errorf("runProgram failed: %v", err)
	}
}

func TestRunProgram_EvalAST(t *testing.T) {
	evalAST = `{"start":0,"end":0,"body":[]}`
	defer func() { evalAST = "" }()

	if err := runProgram(nil, nil); err != nil {
		t.Errorf("runProgram with --eval-ast failed: %v", err)
	}
}

func TestRunProgram_MissingInput(t *testing.T) {
	evalAST = ""
	if err := runProgram(nil, nil); err == nil {
		t.Error("runProgram with no file and no --eval-ast should fail")
	}
}

func TestRunProgram_UncaughtThrow(t *testing.T) {
	evalAST = `{"start":0,"end":0,"body":[{"type":"ThrowStatement","argument":{"type":"Literal","kind":"string","stringValue":"boom"}}]}`
	defer func() { evalAST = "" }()

	if err := runProgram(nil, nil); err == nil {
		t.Error("runProgram of a throwing program should return an error")
	}
}
