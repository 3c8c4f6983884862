package main

import (
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/prepline/prepline/internal/testsupport"
)

func TestPrepScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/prep",
		Setup: func(env *testscript.Env) error {
			return testsupport.SetupScriptEnv(t, env)
		},
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			"envset": testsupport.CmdEnvSet,
			"taskid": testsupport.CmdTaskID,
		},
	})
}
