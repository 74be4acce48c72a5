package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systune-dev/systune/internal/config"
	"github.com/systune-dev/systune/internal/switcher"
)

var sampleProfiles = []config.Summary{
	{ID: "balanced", Summary: "General non-specialized tuned profile"},
	{ID: "virtual-guest", Summary: "Optimize for running inside a virtual guest", Parent: "throughput-performance"},
}

func Test_TableFormatter_List(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf).FormatList(sampleProfiles, "balanced"))

	assert.Equal(t, `Available profiles:
balanced - General non-specialized tuned profile
virtual-guest - Optimize for running inside a virtual guest
Current active profile: balanced
`, buf.String())
}

func Test_TableFormatter_Active(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf).FormatActive("none"))
	assert.Equal(t, "Current active profile: none\n", buf.String())
}

func Test_TableFormatter_VerifyClean(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	report := &switcher.VerifyReport{Profile: "balanced", Checked: 3}
	require.NoError(t, NewTableFormatter(&buf).FormatVerify(report))

	assert.Contains(t, buf.String(), "Verifying profile: balanced")
	assert.Contains(t, buf.String(), "Verification succeeded: 3 settings match.")
}

func Test_TableFormatter_VerifyMismatch(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	report := &switcher.VerifyReport{
		Profile: "balanced",
		Checked: 2,
		Mismatches: []switcher.Mismatch{
			{Key: "cpu.governor", Expected: "ondemand", Actual: "performance", Origin: "balanced"},
		},
		Skipped: []string{"disk.readahead"},
	}
	require.NoError(t, NewTableFormatter(&buf).FormatVerify(report))

	out := buf.String()
	assert.Contains(t, out, `MISMATCH cpu.governor: expected "ondemand" (from balanced), got "performance"`)
	assert.Contains(t, out, "skipped disk.readahead: not supported on this host")
	assert.Contains(t, out, "Verification failed: 1 of 2 settings differ.")
}

func Test_TableFormatter_VerifyNoneActive(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf).FormatVerify(&switcher.VerifyReport{Profile: "none"}))
	assert.Equal(t, "No profile is active; nothing to verify.\n", buf.String())
}

func Test_JSONFormatter_List(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf).FormatList(sampleProfiles, "balanced"))

	var decoded struct {
		Profiles []config.Summary `json:"profiles"`
		Active   string           `json:"active"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleProfiles, decoded.Profiles)
	assert.Equal(t, "balanced", decoded.Active)
}

func Test_YAMLFormatter_List(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter(&buf).FormatList(sampleProfiles, "powersave"))

	var decoded struct {
		Profiles []config.Summary `yaml:"profiles"`
		Active   string           `yaml:"active"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleProfiles, decoded.Profiles)
	assert.Equal(t, "powersave", decoded.Active)
}

func Test_ParseFormat(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"table", "json", "yaml"} {
		format, err := ParseFormat(valid)
		require.NoError(t, err)
		assert.Equal(t, Format(valid), format)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func Test_New_SelectsFormatter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	assert.IsType(t, &TableFormatter{}, New(FormatTable, &buf))
	assert.IsType(t, &JSONFormatter{}, New(FormatJSON, &buf))
	assert.IsType(t, &YAMLFormatter{}, New(FormatYAML, &buf))
}
