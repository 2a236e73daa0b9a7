package maincmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"
)

func stdio(in string) (mainer.Stdio, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return mainer.Stdio{
		Stdin:  strings.NewReader(in),
		Stdout: &out,
		Stderr: &errOut,
	}, &out, &errOut
}

func TestRunOneShotCommand(t *testing.T) {
	io, out, errOut := stdio("")
	c := Cmd{Command: `echo 1 + 1;`}
	code := c.Main([]string{"sphinx", "-c", `echo 1 + 1;`}, io)
	require.Equal(t, mainer.Success, code)
	require.Equal(t, "2\n", out.String())
	require.Empty(t, errOut.String())
}

func TestRunPrintsVersionAndExits(t *testing.T) {
	io, out, _ := stdio("")
	c := Cmd{BuildVersion: "1.2.3", BuildDate: "2026-01-01"}
	code := c.Main([]string{"sphinx", "-v"}, io)
	require.Equal(t, mainer.Success, code)
	require.Contains(t, out.String(), "1.2.3")
}

func TestRunRejectsFileAndCommandTogether(t *testing.T) {
	c := Cmd{}
	c.SetArgs([]string{"a.sph"})
	c.Command = "echo 1;"
	require.Error(t, c.Validate())
}

func TestReplEchoesTrailingExpression(t *testing.T) {
	io, out, _ := stdio("1 + 1;\nquit\n")
	c := Cmd{}
	code := c.Main([]string{"sphinx"}, io)
	require.Equal(t, mainer.Success, code)
	require.Contains(t, out.String(), "2\n")
}

func TestReplSubmitsEachCompleteStatement(t *testing.T) {
	io, out, _ := stdio("var x = 5;\necho x;\nquit\n")
	c := Cmd{}
	code := c.Main([]string{"sphinx"}, io)
	require.Equal(t, mainer.Success, code)
	require.Contains(t, out.String(), "5\n")
}

func TestReplContinuesAcrossLinesUntilParseable(t *testing.T) {
	io, out, _ := stdio("fn f() {\necho 1;\n}\nf();\nquit\n")
	c := Cmd{}
	code := c.Main([]string{"sphinx"}, io)
	require.Equal(t, mainer.Success, code)
	require.Contains(t, out.String(), "1\n")
}
