package terminal

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnv struct {
	path      string
	now       time.Time
	navigated []Section
}

func (f *fakeEnv) Navigate(s Section) {
	f.navigated = append(f.navigated, s)
	f.path = s.Path
}

func (f *fakeEnv) CurrentPath() string { return f.path }

func (f *fakeEnv) Now() time.Time { return f.now }

func newFakeEnv() *fakeEnv {
	return &fakeEnv{path: "/", now: time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)}
}

func TestExecute_RecognizedVerbsAlwaysProduceOutput(t *testing.T) {
	in := NewInterpreter(DefaultRoutes())
	inputs := []string{"cd", "cd about", "ls", "pwd", "whoami", "help", "date", "matrix", "decrypt x", "decrypt", "history", "zzz"}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			res := in.Execute(newFakeEnv(), input)
			assert.NotEmpty(t, res.Output)
		})
	}

	res := in.Execute(newFakeEnv(), "clear")
	assert.True(t, res.Success)
	assert.True(t, res.ClearScreen)
	assert.Empty(t, res.Output)
}

func TestExecute_CDNormalization(t *testing.T) {
	in := NewInterpreter(DefaultRoutes())

	bare := newFakeEnv()
	slashed := newFakeEnv()
	assert.Equal(t, in.Execute(bare, "cd about"), in.Execute(slashed, "cd /about"))
	require.Len(t, bare.navigated, 1)
	assert.Equal(t, bare.navigated, slashed.navigated)
	assert.Equal(t, "/about", bare.path)

	root := newFakeEnv()
	want := in.Execute(root, "cd /")
	assert.True(t, want.Success)
	assert.Equal(t, "Navigating to home directory...", want.Output)

	for _, input := range []string{"cd ~", "cd /home", "cd"} {
		env := newFakeEnv()
		env.path = "/skills"
		assert.Equal(t, want, in.Execute(env, input), input)
		require.Len(t, env.navigated, 1, input)
		assert.Equal(t, SectionHome, env.navigated[0].Key, input)
	}
}

func TestExecute_CDSectionMessages(t *testing.T) {
	in := NewInterpreter(DefaultRoutes())
	tests := []struct {
		arg  string
		want string
	}{
		{"about", "Navigating to about section..."},
		{"skills", "Navigating to skills directory..."},
		{"projects", "Navigating to projects repository..."},
		{"education", "Navigating to education records..."},
		{"testimonials", "Navigating to testimonials vault..."},
		{"contact", "Establishing communication protocol..."},
	}

	for _, tc := range tests {
		env := newFakeEnv()
		res := in.Execute(env, "cd "+tc.arg)
		assert.True(t, res.Success, tc.arg)
		assert.Equal(t, tc.want, res.Output, tc.arg)
		assert.Equal(t, "/"+tc.arg, env.path, tc.arg)
	}
}

func TestExecute_CDUnknownPath(t *testing.T) {
	in := NewInterpreter(DefaultRoutes())
	env := newFakeEnv()

	res := in.Execute(env, "cd nosuchsection")
	assert.False(t, res.Success)
	assert.Contains(t, res.Output, "/nosuchsection")
	assert.Equal(t, "bash: cd: /nosuchsection: No such file or directory", res.Output)
	assert.Empty(t, env.navigated)
	assert.Equal(t, "/", env.path)
}

func TestExecute_VerbCaseInsensitiveArgumentCaseSensitive(t *testing.T) {
	in := NewInterpreter(DefaultRoutes())

	assert.Equal(t, in.Execute(newFakeEnv(), "cd about"), in.Execute(newFakeEnv(), "CD about"))

	upper := in.Execute(newFakeEnv(), "CD ABOUT")
	assert.False(t, upper.Success)
	assert.Contains(t, upper.Output, "/ABOUT")
}

func TestExecute_HistoryWithoutCommands(t *testing.T) {
	in := NewInterpreter(DefaultRoutes())

	res := in.Execute(newFakeEnv(), "history")
	assert.True(t, res.Success)
	assert.Equal(t, "No commands in history.", res.Output)
}

func TestExecute_Decrypt(t *testing.T) {
	in := NewInterpreter(DefaultRoutes())

	missing := in.Execute(newFakeEnv(), "decrypt")
	assert.False(t, missing.Success)
	assert.Equal(t, DecryptUsage, missing.Output)
	assert.Empty(t, missing.SideEffect)

	res := in.Execute(newFakeEnv(), "decrypt foo")
	assert.True(t, res.Success)
	assert.Equal(t, "foo", res.SideEffect)
	assert.Equal(t, "Decrypting foo... [ACCESS GRANTED]", res.Output)
}

func TestExecute_UnknownVerbEchoed(t *testing.T) {
	in := NewInterpreter(DefaultRoutes())

	res := in.Execute(newFakeEnv(), "zzz")
	assert.False(t, res.Success)
	assert.Contains(t, res.Output, "zzz")
	assert.Equal(t, "bash: zzz: command not found", res.Output)
}

func TestExecute_PwdDateWhoami(t *testing.T) {
	in := NewInterpreter(DefaultRoutes())
	env := newFakeEnv()
	env.path = "/projects"

	assert.Equal(t, "/projects", in.Execute(env, "pwd").Output)

	env.path = ""
	assert.Equal(t, "/", in.Execute(env, "pwd").Output)

	assert.Equal(t, "Current timestamp: 3/5/2024, 2:07:09 PM", in.Execute(env, "date").Output)

	env.now = env.now.Add(time.Hour)
	assert.Equal(t, "Current timestamp: 3/5/2024, 3:07:09 PM", in.Execute(env, "date").Output)

	assert.Equal(t, Identity, in.Execute(env, "whoami").Output)
	assert.Equal(t, "guest", in.WithIdentity("guest").Execute(env, "whoami").Output)
}

func TestExecute_HelpListsEveryVerb(t *testing.T) {
	in := NewInterpreter(DefaultRoutes())
	help := in.Execute(newFakeEnv(), "help").Output

	for name := range verbNames {
		assert.True(t, strings.Contains(help, "  "+name), name)
	}
}

func TestExecute_ListingNamesEverySection(t *testing.T) {
	in := NewInterpreter(DefaultRoutes())
	ls := in.Execute(newFakeEnv(), "ls")
	assert.True(t, ls.Success)

	for _, s := range DefaultRoutes().Sections() {
		assert.Contains(t, ls.Output, " "+s.Key+"\n")
	}
}
