package commands

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/ovhdcos/cmd/ovhdcos/handlers"
	"github.com/imamik/ovhdcos/internal/config"
)

func TestRoot(t *testing.T) {
	cmd := Root()

	require.NotNil(t, cmd)
	assert.Equal(t, "ovhdcos", cmd.Use)

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"deploy", "catalog", "version"}, names)
}

func TestDeploy_Defaults(t *testing.T) {
	cmd := Deploy()

	tests := map[string]string{
		"masters":       "1",
		"agents":        "1",
		"region":        "SBG1",
		"flavor":        "hg-15",
		"image":         "Centos 7",
		"ssh-user":      "centos",
		"name":          "Test",
		"workdir":       ".",
		"poll-interval": "5s",
		"ready-timeout": "30m0s",
		"hold":          "true",
		"log-format":    "text",
	}
	for name, want := range tests {
		flag := cmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, want, flag.DefValue, name)
	}
	assert.Equal(t, "v", cmd.Flags().Lookup("verbose").Shorthand)
	assert.Equal(t, "Name given to the instances", cmd.Flags().Lookup("name").Usage)
	assert.Nil(t, cmd.Flags().Lookup("genconf-dir"))
}

func TestDeploy_PassesFlags(t *testing.T) {
	orig := runDeploy
	t.Cleanup(func() { runDeploy = orig })

	var gotOpts *config.Options
	var gotLog handlers.LogOptions
	runDeploy = func(_ context.Context, opts *config.Options, logOpts handlers.LogOptions) error {
		gotOpts, gotLog = opts, logOpts
		return nil
	}

	cmd := Root()
	cmd.SetArgs([]string{
		"deploy", "--project", "My Project", "--ssh-key", "deploy",
		"--masters", "3", "--agents", "2", "--region", "GRA7",
		"--url", "s3://bucket/dcos_generate_config.sh",
		"--workdir", "/srv/dcos",
		"--poll-interval", "1s", "--ready-timeout", "0", "--hold=false",
		"--log-format", "json", "-v",
	})
	require.NoError(t, cmd.Execute())

	require.NotNil(t, gotOpts)
	assert.Equal(t, "My Project", gotOpts.Project)
	assert.Equal(t, "deploy", gotOpts.SSHKey)
	assert.Equal(t, 3, gotOpts.Masters)
	assert.Equal(t, 2, gotOpts.Agents)
	assert.Equal(t, "GRA7", gotOpts.Region)
	assert.Equal(t, "hg-15", gotOpts.Flavor)
	assert.Equal(t, "s3://bucket/dcos_generate_config.sh", gotOpts.InstallerURL)
	assert.Equal(t, "/srv/dcos/genconf", gotOpts.GenconfDir())
	assert.Equal(t, time.Second, gotOpts.PollInterval)
	assert.Zero(t, gotOpts.ReadyTimeout)
	assert.False(t, gotOpts.Hold)
	assert.Equal(t, handlers.LogOptions{Format: "json", Verbose: true}, gotLog)
}

func TestDeploy_RequiredFlags(t *testing.T) {
	orig := runDeploy
	t.Cleanup(func() { runDeploy = orig })
	runDeploy = func(context.Context, *config.Options, handlers.LogOptions) error {
		t.Fatal("handler must not run without required flags")
		return nil
	}

	cmd := Root()
	cmd.SetArgs([]string{"deploy", "--masters", "1"})
	cmd.SetOut(&bytes.Buffer{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project")
	assert.Contains(t, err.Error(), "ssh-key")
	assert.Contains(t, err.Error(), "agents")
	assert.NotContains(t, err.Error(), "masters")
}

func TestDeploy_ReturnsHandlerError(t *testing.T) {
	orig := runDeploy
	t.Cleanup(func() { runDeploy = orig })
	runDeploy = func(context.Context, *config.Options, handlers.LogOptions) error {
		return errors.New("deployment failed")
	}

	cmd := Root()
	cmd.SetArgs([]string{"deploy", "--project", "p", "--ssh-key", "k", "--masters", "1", "--agents", "0"})
	require.EqualError(t, cmd.Execute(), "deployment failed")
}

func TestCatalog_PassesFlags(t *testing.T) {
	orig := runCatalog
	t.Cleanup(func() { runCatalog = orig })

	var gotProject, gotRegion string
	runCatalog = func(_ context.Context, project, region string) error {
		gotProject, gotRegion = project, region
		return nil
	}

	cmd := Root()
	cmd.SetArgs([]string{"catalog", "--project", "My Project", "--region", "SBG1"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "My Project", gotProject)
	assert.Equal(t, "SBG1", gotRegion)
}

func TestCatalog_ProjectRequired(t *testing.T) {
	cmd := Root()
	cmd.SetArgs([]string{"catalog"})
	cmd.SetOut(&bytes.Buffer{})
	require.Error(t, cmd.Execute())
}

func TestVersion_Output(t *testing.T) {
	origVersion, origCommit, origDate := version, commit, date
	defer func() { version, commit, date = origVersion, origCommit, origDate }()

	SetVersionInfo("1.2.3", "abc123", "2026-01-01")

	cmd := Root()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "ovhdcos 1.2.3\n  commit: abc123\n  built:  2026-01-01\n", out.String())
}
