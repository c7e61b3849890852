package infodiff

// desc-props.go holds the serializable descriptions of an experiment: the
// properties of the networks to build, the parameters of the simulation run,
// and a dictionary that lets one file carry several named experiments.
// Serialization to json or to yaml is selected by file extension or flag

import (
	"encoding/json"
	"errors"
	"fmt"
	"gopkg.in/yaml.v3"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrNetworkProperties is returned when a NetworkProperties description does not validate
var ErrNetworkProperties = errors.New("invalid network properties")

// NetworkProperties describes the networks built for every trial and the
// diffusion run on them
type NetworkProperties struct {
	// NumNodes is the number of nodes in each network
	NumNodes int `json:"numnodes" yaml:"numnodes"`

	// DegreeDist names the degree distribution: constant, uniform, power_law, poisson
	DegreeDist string `json:"degreedist" yaml:"degreedist"`

	// KMin is the minimum degree
	KMin int `json:"kmin" yaml:"kmin"`

	// KMax is the maximum degree of the uniform distribution
	KMax int `json:"kmax,omitempty" yaml:"kmax,omitempty"`

	// Power is the exponent of the power-law distribution
	Power float64 `json:"power,omitempty" yaml:"power,omitempty"`

	// Lambda is the parameter of the Poisson distribution
	Lambda float64 `json:"lambda,omitempty" yaml:"lambda,omitempty"`

	// Transmissibility is the probability that information crosses a connection
	Transmissibility float64 `json:"transmissibility" yaml:"transmissibility"`

	// CharacteristicTime is the mean of the exponential delay across a connection
	CharacteristicTime float64 `json:"chartime" yaml:"chartime"`

	// LoopsOK permits connections from a node to itself
	LoopsOK bool `json:"loopsok" yaml:"loopsok"`

	// DanglingOK accepts networks in which some stubs found no partner
	DanglingOK bool `json:"danglingok" yaml:"danglingok"`

	// InitiallyInformed is the number of seed nodes per trial
	InitiallyInformed int `json:"initiallyinformed" yaml:"initiallyinformed"`
}

// CreateNetworkProperties is a constructor that fills in defaults: unit
// characteristic time, certain transmission and a single seed
func CreateNetworkProperties(numNodes int, degreeDist string, kMin int) *NetworkProperties {
	np := new(NetworkProperties)
	np.NumNodes = numNodes
	np.DegreeDist = degreeDist
	np.KMin = kMin
	np.Transmissibility = 1.0
	np.CharacteristicTime = 1.0
	np.InitiallyInformed = 1
	return np
}

// DistParameter returns the parameter of the selected degree distribution
func (np *NetworkProperties) DistParameter() float64 {
	kind, err := degreeDistFromStr(np.DegreeDist)
	if err != nil {
		return 0.0
	}
	switch kind {
	case UniformDist:
		return float64(np.KMax)
	case PowerLawDist:
		return np.Power
	case PoissonDist:
		return np.Lambda
	}
	return 0.0
}

// Validate checks every field and reports all the problems found in one error
func (np *NetworkProperties) Validate() error {
	errs := make([]error, 0)

	if np.NumNodes < 1 {
		errs = append(errs, fmt.Errorf("numnodes %d must be positive", np.NumNodes))
	}
	if np.Transmissibility < 0.0 || np.Transmissibility > 1.0 {
		errs = append(errs, fmt.Errorf("transmissibility %v not in [0,1]", np.Transmissibility))
	}
	if !(np.CharacteristicTime > 0.0) {
		errs = append(errs, fmt.Errorf("chartime %v must be positive", np.CharacteristicTime))
	}
	if np.InitiallyInformed < 1 || np.InitiallyInformed > np.NumNodes {
		errs = append(errs, fmt.Errorf("initiallyinformed %d not in [1,%d]", np.InitiallyInformed, np.NumNodes))
	}

	// the distribution checks its own parameters; no random source is needed for that
	if kind, err := degreeDistFromStr(np.DegreeDist); err != nil {
		errs = append(errs, err)
	} else if np.NumNodes > 0 {
		if _, err := CreateDegreeDist(kind, np.KMin, np.DistParameter(), np.NumNodes, nil); err != nil {
			errs = append(errs, err)
		}
	}

	if err := ReportErrs(errs); err != nil {
		return fmt.Errorf("%w: %s", ErrNetworkProperties, err.Error())
	}
	return nil
}

// SimulationCfg holds the parameters of a simulation run that do not describe the network
type SimulationCfg struct {
	// NumTrials is the number of independent trials
	NumTrials int `json:"numtrials" yaml:"numtrials"`

	// Workers is the number of concurrent workers, zero means one per cpu
	Workers int `json:"workers" yaml:"workers"`

	// MaxBuildAttempts bounds the network constructions tried per trial, zero means no bound
	MaxBuildAttempts int `json:"maxbuildattempts,omitempty" yaml:"maxbuildattempts,omitempty"`

	// Engine selects the event list: "queue" (default) or "evtm"
	Engine string `json:"engine,omitempty" yaml:"engine,omitempty"`

	// SeedOffset selects which random streams the workers use; zero takes one from the clock
	SeedOffset int `json:"seedoffset,omitempty" yaml:"seedoffset,omitempty"`

	// LogLevel names the level of the run's logger
	LogLevel string `json:"loglevel,omitempty" yaml:"loglevel,omitempty"`

	// output files, empty names are not written
	ResultsFile string `json:"resultsfile,omitempty" yaml:"resultsfile,omitempty"`
	TraceFile   string `json:"tracefile,omitempty" yaml:"tracefile,omitempty"`
	SummaryFile string `json:"summaryfile,omitempty" yaml:"summaryfile,omitempty"`
}

// Validate checks the simulation parameters
func (sc *SimulationCfg) Validate() error {
	errs := make([]error, 0)
	if sc.NumTrials < 0 {
		errs = append(errs, fmt.Errorf("numtrials %d is negative", sc.NumTrials))
	}
	if sc.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers %d is negative", sc.Workers))
	}
	if sc.MaxBuildAttempts < 0 {
		errs = append(errs, fmt.Errorf("maxbuildattempts %d is negative", sc.MaxBuildAttempts))
	}
	if _, err := engineFromStr(sc.Engine); err != nil {
		errs = append(errs, err)
	}
	if len(sc.LogLevel) > 0 {
		if _, err := logLevelFromStr(sc.LogLevel); err != nil {
			errs = append(errs, err)
		}
	}
	return ReportErrs(errs)
}

// ExperimentDesc binds a name to the network and simulation descriptions of an experiment
type ExperimentDesc struct {
	Name       string            `json:"name" yaml:"name"`
	Network    NetworkProperties `json:"network" yaml:"network"`
	Simulation SimulationCfg     `json:"simulation" yaml:"simulation"`
}

// CreateExperimentDesc is a constructor
func CreateExperimentDesc(name string, np *NetworkProperties, sc *SimulationCfg) *ExperimentDesc {
	return &ExperimentDesc{Name: name, Network: *np, Simulation: *sc}
}

// Validate checks both halves of the description
func (ed *ExperimentDesc) Validate() error {
	return ReportErrs([]error{ed.Network.Validate(), ed.Simulation.Validate()})
}

// WriteToFile stores the ExperimentDesc struct to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
func (ed *ExperimentDesc) WriteToFile(filename string) error {
	return writeDesc(filename, *ed)
}

// ReadExperimentDesc deserializes a byte slice holding a representation of an ExperimentDesc struct.
// If the input argument of dict (those bytes) is empty, the file whose name is given is read
// to acquire them.  A deserialized representation is returned, or an error if one is generated
// from a file read or the deserialization.
func ReadExperimentDesc(filename string, useYAML bool, dict []byte) (*ExperimentDesc, error) {
	example := ExperimentDesc{}
	if err := readDesc(filename, useYAML, dict, &example); err != nil {
		return nil, err
	}
	return &example, nil
}

// ExperimentDict holds named experiment descriptions
type ExperimentDict struct {
	DictName string                    `json:"dictname" yaml:"dictname"`
	Exprmnts map[string]ExperimentDesc `json:"exprmnts" yaml:"exprmnts"`
}

// CreateExperimentDict is a constructor
func CreateExperimentDict(name string) *ExperimentDict {
	ed := new(ExperimentDict)
	ed.DictName = name
	ed.Exprmnts = make(map[string]ExperimentDesc)
	return ed
}

// AddExperiment puts an ExperimentDesc into the dictionary, refusing to
// replace one of the same name unless overwrite is set
func (edd *ExperimentDict) AddExperiment(ed *ExperimentDesc, overwrite bool) error {
	if !overwrite {
		_, present := edd.Exprmnts[ed.Name]
		if present {
			return fmt.Errorf("attempt to overwrite experiment %s", ed.Name)
		}
	}
	edd.Exprmnts[ed.Name] = *ed
	return nil
}

// RecoverExperiment returns the ExperimentDesc with the given name, and a flag
// denoting whether it is present in the dictionary
func (edd *ExperimentDict) RecoverExperiment(name string) (*ExperimentDesc, bool) {
	ed, present := edd.Exprmnts[name]
	if present {
		return &ed, true
	}
	return nil, false
}

// WriteToFile stores the ExperimentDict struct to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
func (edd *ExperimentDict) WriteToFile(filename string) error {
	return writeDesc(filename, *edd)
}

// ReadExperimentDict deserializes an ExperimentDict, from dict if it is not
// empty and otherwise from the named file
func ReadExperimentDict(filename string, useYAML bool, dict []byte) (*ExperimentDict, error) {
	example := ExperimentDict{}
	if err := readDesc(filename, useYAML, dict, &example); err != nil {
		return nil, err
	}
	if example.Exprmnts == nil {
		example.Exprmnts = make(map[string]ExperimentDesc)
	}
	return &example, nil
}

// IsYAMLFile is true when the file extension selects yaml serialization
func IsYAMLFile(filename string) bool {
	pathExt := path.Ext(filename)
	return pathExt == ".yaml" || pathExt == ".YAML" || pathExt == ".yml"
}

// writeDesc serializes obj to filename, as yaml or json depending on the extension
func writeDesc(filename string, obj any) error {
	pathExt := path.Ext(filename)
	var bytes []byte
	var merr error = nil

	if IsYAMLFile(filename) {
		bytes, merr = yaml.Marshal(obj)
	} else if pathExt == ".json" || pathExt == ".JSON" {
		bytes, merr = json.MarshalIndent(obj, "", "\t")
	} else {
		return fmt.Errorf("file %s: extension must select yaml or json", filename)
	}

	if merr != nil {
		return merr
	}
	return os.WriteFile(filename, bytes, 0644)
}

// readDesc fills obj from dict, reading dict from filename when it is empty
func readDesc(filename string, useYAML bool, dict []byte, obj any) error {
	var err error

	// if the dict slice of bytes is empty we get them from the file whose name is an argument
	if len(dict) == 0 {
		dict, err = os.ReadFile(filename)
		if err != nil {
			return err
		}
	}

	if useYAML {
		return yaml.Unmarshal(dict, obj)
	}
	return json.Unmarshal(dict, obj)
}

// ReportErrs transforms a list of errors and transforms the non-nil ones into a single error
// with comma-separated report of all the constituent errors, and returns it.
func ReportErrs(errs []error) error {
	errMsg := make([]string, 0)
	for _, err := range errs {
		if err != nil {
			errMsg = append(errMsg, err.Error())
		}
	}
	if len(errMsg) == 0 {
		return nil
	}

	return errors.New(strings.Join(errMsg, ","))
}

// CheckReadableFiles probes the file system to ensure that every
// one of the argument filenames exists and is readable
func CheckReadableFiles(names []string) (bool, error) {
	return CheckFiles(names, true)
}

// CheckOutputFiles probes the file system to ensure that every
// argument filename can be written.
func CheckOutputFiles(names []string) (bool, error) {
	return CheckFiles(names, false)
}

// CheckFiles probes the file system for permitted access to all the
// argument filenames, optionally checking also for the existence
// of those files for the purposes of reading them.
func CheckFiles(names []string, checkExistence bool) (bool, error) {
	errs := make([]error, 0)

	for _, name := range names {
		if len(name) == 0 {
			continue
		}

		// the directory of each named file must exist
		directory, _ := filepath.Split(name)
		if len(directory) > 0 {
			if _, err := os.Stat(directory); err != nil {
				errs = append(errs, err)
			}
		}

		if checkExistence {
			if _, err := os.Stat(name); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if len(errs) == 0 {
		return true, nil
	}
	return false, ReportErrs(errs)
}
