package infodiff

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testExperiment(name string) *ExperimentDesc {
	np := CreateNetworkProperties(50, "power_law", 2)
	np.Power = 2.5
	np.Transmissibility = 0.8
	np.CharacteristicTime = 2.0
	np.InitiallyInformed = 3
	sc := &SimulationCfg{NumTrials: 4, Workers: 2, Engine: "queue", SeedOffset: 5}
	return CreateExperimentDesc(name, np, sc)
}

func TestNetworkPropertiesValidate(t *testing.T) {
	np := CreateNetworkProperties(100, "constant", 3)
	require.NoError(t, np.Validate())

	tests := []struct {
		name   string
		modify func(np *NetworkProperties)
	}{
		{"no nodes", func(np *NetworkProperties) { np.NumNodes = 0 }},
		{"transmissibility above one", func(np *NetworkProperties) { np.Transmissibility = 1.5 }},
		{"negative transmissibility", func(np *NetworkProperties) { np.Transmissibility = -0.1 }},
		{"zero characteristic time", func(np *NetworkProperties) { np.CharacteristicTime = 0.0 }},
		{"no seeds", func(np *NetworkProperties) { np.InitiallyInformed = 0 }},
		{"more seeds than nodes", func(np *NetworkProperties) { np.InitiallyInformed = 101 }},
		{"unknown distribution", func(np *NetworkProperties) { np.DegreeDist = "geometric" }},
		{"negative k_min", func(np *NetworkProperties) { np.KMin = -1 }},
		{"uniform k_max below k_min", func(np *NetworkProperties) { np.DegreeDist = "uniform"; np.KMax = 2 }},
		{"poisson without mean", func(np *NetworkProperties) { np.DegreeDist = "poisson" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bad := *np
			tc.modify(&bad)
			assert.ErrorIs(t, bad.Validate(), ErrNetworkProperties)
		})
	}
}

func TestNetworkPropertiesValidateReportsAll(t *testing.T) {
	np := CreateNetworkProperties(10, "constant", 1)
	np.Transmissibility = 2.0
	np.CharacteristicTime = -1.0

	err := np.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transmissibility")
	assert.Contains(t, err.Error(), "chartime")
}

func TestDistParameter(t *testing.T) {
	np := CreateNetworkProperties(10, "uniform", 1)
	np.KMax = 7
	np.Power = 2.5
	np.Lambda = 3.5
	assert.Equal(t, 7.0, np.DistParameter())

	np.DegreeDist = "power_law"
	assert.Equal(t, 2.5, np.DistParameter())

	np.DegreeDist = "poisson"
	assert.Equal(t, 3.5, np.DistParameter())

	np.DegreeDist = "constant"
	assert.Equal(t, 0.0, np.DistParameter())
}

func TestSimulationCfgValidate(t *testing.T) {
	sc := SimulationCfg{NumTrials: 10}
	assert.NoError(t, sc.Validate())

	sc.Engine = "evtm"
	sc.LogLevel = "debug"
	assert.NoError(t, sc.Validate())

	sc.Engine = "calendar"
	sc.LogLevel = "chatty"
	sc.Workers = -1
	err := sc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "calendar")
	assert.Contains(t, err.Error(), "chatty")
}

func TestExperimentDictRoundTrip(t *testing.T) {
	dict := CreateExperimentDict("roundtrip")
	require.NoError(t, dict.AddExperiment(testExperiment("alpha"), false))
	require.NoError(t, dict.AddExperiment(testExperiment("beta"), false))

	for _, ext := range []string{".yaml", ".json"} {
		t.Run(ext, func(t *testing.T) {
			filename := filepath.Join(t.TempDir(), "exp"+ext)
			require.NoError(t, dict.WriteToFile(filename))

			read, err := ReadExperimentDict(filename, IsYAMLFile(filename), nil)
			require.NoError(t, err)
			assert.Equal(t, dict.DictName, read.DictName)
			assert.Len(t, read.Exprmnts, 2)

			ed, present := read.RecoverExperiment("beta")
			require.True(t, present)
			assert.Equal(t, *testExperiment("beta"), *ed)
			assert.NoError(t, ed.Validate())
		})
	}
}

func TestExperimentDescFromBytes(t *testing.T) {
	dict := []byte(`
name: inline
network:
  numnodes: 20
  degreedist: poisson
  kmin: 0
  lambda: 2.5
  transmissibility: 0.5
  chartime: 1.0
  initiallyinformed: 2
simulation:
  numtrials: 3
`)
	ed, err := ReadExperimentDesc("", true, dict)
	require.NoError(t, err)
	assert.Equal(t, "inline", ed.Name)
	assert.Equal(t, 2.5, ed.Network.DistParameter())
	assert.Equal(t, 3, ed.Simulation.NumTrials)
	assert.NoError(t, ed.Validate())
}

func TestExperimentDescWriteRead(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "single.json")
	ed := testExperiment("single")
	require.NoError(t, ed.WriteToFile(filename))

	read, err := ReadExperimentDesc(filename, false, nil)
	require.NoError(t, err)
	assert.Equal(t, *ed, *read)
}

func TestWriteDescUnknownExtension(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "exp.txt")
	assert.Error(t, CreateExperimentDict("x").WriteToFile(filename))
	_, err := os.Stat(filename)
	assert.True(t, os.IsNotExist(err))
}

func TestReadExperimentDictMissingFile(t *testing.T) {
	_, err := ReadExperimentDict(filepath.Join(t.TempDir(), "absent.yaml"), true, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAddExperimentOverwrite(t *testing.T) {
	dict := CreateExperimentDict("overwrite")
	require.NoError(t, dict.AddExperiment(testExperiment("alpha"), false))

	replacement := testExperiment("alpha")
	replacement.Simulation.NumTrials = 99
	assert.Error(t, dict.AddExperiment(replacement, false))

	require.NoError(t, dict.AddExperiment(replacement, true))
	ed, present := dict.RecoverExperiment("alpha")
	require.True(t, present)
	assert.Equal(t, 99, ed.Simulation.NumTrials)

	_, present = dict.RecoverExperiment("gamma")
	assert.False(t, present)
}

func TestReportErrs(t *testing.T) {
	assert.NoError(t, ReportErrs(nil))
	assert.NoError(t, ReportErrs([]error{nil, nil}))

	err := ReportErrs([]error{assert.AnError, nil, assert.AnError})
	require.Error(t, err)
	assert.Equal(t, assert.AnError.Error()+","+assert.AnError.Error(), err.Error())
}

func TestCheckFiles(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present.yaml")
	require.NoError(t, os.WriteFile(present, []byte("dictname: x\n"), 0644))

	ok, err := CheckReadableFiles([]string{present, ""})
	assert.True(t, ok)
	assert.NoError(t, err)

	ok, err = CheckReadableFiles([]string{filepath.Join(dir, "absent.yaml")})
	assert.False(t, ok)
	assert.Error(t, err)

	ok, err = CheckOutputFiles([]string{filepath.Join(dir, "new.tsv")})
	assert.True(t, ok)
	assert.NoError(t, err)

	ok, err = CheckOutputFiles([]string{filepath.Join(dir, "nodir", "new.tsv")})
	assert.False(t, ok)
	assert.Error(t, err)
}
