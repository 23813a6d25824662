package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crytic/soltrace/cmd/exitcodes"
	"github.com/crytic/soltrace/compilation/types"
	"github.com/crytic/soltrace/config"
	"github.com/crytic/soltrace/logging"
	"github.com/crytic/soltrace/signatures"
	"github.com/crytic/soltrace/symbols"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const counterInput = `{
	"language": "Solidity",
	"sources": {
		"Counter.sol": {"content": "contract Counter { function inc() external {} }"}
	}
}`

const counterOutput = `{
	"sources": {
		"Counter.sol": {
			"id": 0,
			"ast": {
				"nodeType": "SourceUnit",
				"id": 8,
				"src": "0:47:0",
				"nodes": [{
					"nodeType": "ContractDefinition",
					"id": 7,
					"src": "0:47:0",
					"name": "Counter",
					"contractKind": "contract",
					"linearizedBaseContracts": [7],
					"nodes": [{
						"nodeType": "FunctionDefinition",
						"id": 6,
						"src": "19:26:0",
						"name": "inc",
						"kind": "function",
						"visibility": "external",
						"stateMutability": "nonpayable",
						"functionSelector": "371303c0",
						"implemented": true,
						"parameters": {"parameters": []}
					}]
				}]
			}
		}
	},
	"contracts": {
		"Counter.sol": {
			"Counter": {
				"abi": [{"type": "function", "name": "inc", "inputs": [], "outputs": [], "stateMutability": "nonpayable"}],
				"metadata": "{\"compiler\":{\"version\":\"0.8.24+commit.e11b9ed9\"}}",
				"evm": {
					"bytecode": {"object": "0x6080604052", "sourceMap": "0:47:0:-:0;;", "linkReferences": {}},
					"deployedBytecode": {"object": "0x6001600201", "sourceMap": "19:26:0:-:0;;", "linkReferences": {}, "immutableReferences": {}},
					"methodIdentifiers": {"inc()": "371303c0"}
				}
			}
		}
	}
}`

// linkedCounterOutput returns the counter artifacts with a runtime bytecode of PUSH32 <immutable 7>
// PUSH20 <Math.sol:Math placeholder> ADD.
func linkedCounterOutput() string {
	runtimeCode := "0x7f" + strings.Repeat("00", 32) + "73" + types.GenerateLibraryPlaceholder("Math.sol:Math") + "01"
	output := strings.Replace(counterOutput, `"0x6001600201"`, `"`+runtimeCode+`"`, 1)
	return strings.Replace(output,
		`"deployedBytecode": {"object": "`+runtimeCode+`", "sourceMap": "19:26:0:-:0;;", "linkReferences": {}, "immutableReferences": {}}`,
		`"deployedBytecode": {"object": "`+runtimeCode+`", "sourceMap": "19:26:0:-:0;;", `+
			`"linkReferences": {"Math.sol": {"Math": [{"start": 34, "length": 20}]}}, `+
			`"immutableReferences": {"7": [{"start": 1, "length": 32}]}}`,
		1)
}

// writeProject writes the counter artifacts and a project configuration referencing them with relative paths.
// Returns the configuration path.
func writeProject(t *testing.T) string {
	return writeProjectWithOutput(t, counterOutput)
}

// writeProjectWithOutput writes a project whose compiler output is the provided JSON.
// Returns the configuration path.
func writeProjectWithOutput(t *testing.T, output string) string {
	directory := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(directory, "input.json"), []byte(counterInput), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(directory, "output.json"), []byte(output), 0644))

	projectConfig := config.GetDefaultProjectConfig()
	projectConfig.Logging.EnableConsoleLogging = false
	configPath := filepath.Join(directory, DefaultProjectConfigFilename)
	require.NoError(t, projectConfig.WriteToFile(configPath))
	return configPath
}

// newProjectCommand returns a command carrying the shared project flags.
func newProjectCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	addProjectFlags(cmd)
	return cmd
}

// buildCounter builds the counter project through the same path the commands use.
func buildCounter(t *testing.T) (*config.ProjectConfig, *symbols.BuildResult) {
	return buildProject(t, counterOutput)
}

// buildProject builds a project with the provided compiler output through the same path the commands use.
func buildProject(t *testing.T, output string) (*config.ProjectConfig, *symbols.BuildResult) {
	cmd := newProjectCommand()
	require.NoError(t, cmd.Flags().Set("config", writeProjectWithOutput(t, output)))

	projectConfig, err := loadProjectConfig(cmd)
	require.NoError(t, err)

	result, err := buildSymbols(projectConfig)
	require.NoError(t, err)
	return projectConfig, result
}

// TestLoadProjectConfig will test that configuration files are read, resolved relative to their directory and
// overridden by flags that were set
func TestLoadProjectConfig(t *testing.T) {
	configPath := writeProject(t)

	cmd := newProjectCommand()
	require.NoError(t, cmd.Flags().Set("config", configPath))
	require.NoError(t, cmd.Flags().Set("strict", "true"))

	projectConfig, err := loadProjectConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(configPath), "input.json"), projectConfig.Artifacts.InputPath)
	assert.Equal(t, filepath.Join(filepath.Dir(configPath), "output.json"), projectConfig.Artifacts.OutputPath)
	assert.True(t, projectConfig.Symbols.Strict)

	// An explicit config path that does not exist is an error
	cmd = newProjectCommand()
	require.NoError(t, cmd.Flags().Set("config", filepath.Join(t.TempDir(), "missing.json")))
	_, err = loadProjectConfig(cmd)
	assert.Error(t, err)
}

// TestBuildSymbolsExitCodes will test that unreadable artifacts map to the build error exit code
func TestBuildSymbolsExitCodes(t *testing.T) {
	projectConfig := config.GetDefaultProjectConfig()
	projectConfig.Artifacts.InputPath = filepath.Join(t.TempDir(), "missing-input.json")
	projectConfig.Artifacts.OutputPath = filepath.Join(t.TempDir(), "missing-output.json")

	_, err := buildSymbols(projectConfig)
	require.Error(t, err)
	_, exitCode := exitcodes.GetInnerErrorAndExitCode(err)
	assert.Equal(t, exitcodes.ExitCodeBuildError, exitCode)
}

// TestCheckStrictDiagnostics will test that warnings only fail the command in strict mode
func TestCheckStrictDiagnostics(t *testing.T) {
	projectConfig := config.GetDefaultProjectConfig()
	result := &symbols.BuildResult{
		Diagnostics: symbols.Diagnostics{
			{Severity: symbols.DiagnosticSeverityInfo, Source: "A.sol", Message: "corrected"},
		},
	}

	projectConfig.Symbols.Strict = true
	assert.NoError(t, checkStrictDiagnostics(projectConfig, result))

	result.Diagnostics = append(result.Diagnostics, symbols.Diagnostic{Severity: symbols.DiagnosticSeverityWarning, Source: "A.sol", Message: "skipped"})
	err := checkStrictDiagnostics(projectConfig, result)
	require.Error(t, err)
	_, exitCode := exitcodes.GetInnerErrorAndExitCode(err)
	assert.Equal(t, exitcodes.ExitCodeDiagnostics, exitCode)

	projectConfig.Symbols.Strict = false
	assert.NoError(t, checkStrictDiagnostics(projectConfig, result))
}

// TestReportInspection will test the inspection report of a built project
func TestReportInspection(t *testing.T) {
	projectConfig, result := buildCounter(t)

	buffer := logging.NewLogBuffer()
	reportInspection(buffer, result, projectConfig.Symbols)
	report := buffer.String()

	assert.Contains(t, report, "[0] Counter.sol")
	assert.Contains(t, report, "Counter.sol:Counter (contract)")
	assert.Contains(t, report, "0x371303c0 inc")
	assert.Contains(t, report, "runtime bytecode: 5 bytes, 3 instructions")
	assert.Contains(t, report, "compiler: 0.8.24")
	assert.NotContains(t, report, "deployment bytecode")

	// Filtering out every contract leaves only the file listing
	projectConfig.Symbols.Contracts = []string{"Other"}
	buffer = logging.NewLogBuffer()
	reportInspection(buffer, result, projectConfig.Symbols)
	assert.NotContains(t, buffer.String(), "Counter.sol:Counter")
}

// TestReportDisassembly will test the disassembly listing of a contract's runtime bytecode
func TestReportDisassembly(t *testing.T) {
	_, result := buildCounter(t)

	bytecode, err := selectBytecode(result, "Counter.sol:Counter", false)
	require.NoError(t, err)

	buffer := logging.NewLogBuffer()
	reportDisassembly(buffer, bytecode)
	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")

	require.Len(t, lines, 4)
	assert.Equal(t, "runtime bytecode of Counter.sol:Counter", lines[0])
	assert.Contains(t, lines[1], "PUSH1")
	assert.Contains(t, lines[1], "0x01")
	assert.Contains(t, lines[1], "Counter.sol:1 in Counter.inc")
	assert.Contains(t, lines[3], "ADD")

	_, err = selectBytecode(result, "Counter.sol:Missing", false)
	assert.Error(t, err)
}

// TestReportLinkedBytecode will test that library links and immutable ranges are annotated in both the inspection
// report and the disassembly
func TestReportLinkedBytecode(t *testing.T) {
	projectConfig, result := buildProject(t, linkedCounterOutput())

	buffer := logging.NewLogBuffer()
	reportInspection(buffer, result, projectConfig.Symbols)
	report := buffer.String()
	assert.Contains(t, report, "runtime bytecode: 55 bytes, 3 instructions")
	assert.Contains(t, report, "library Math.sol:Math at 34")
	assert.Contains(t, report, "immutable 7 at [1, 33)")

	bytecode, err := selectBytecode(result, "Counter.sol:Counter", false)
	require.NoError(t, err)

	buffer = logging.NewLogBuffer()
	reportDisassembly(buffer, bytecode)
	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")

	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "PUSH32")
	assert.Contains(t, lines[1], " immutable 7")
	assert.NotContains(t, lines[1], "library")
	assert.Contains(t, lines[2], "PUSH20")
	assert.Contains(t, lines[2], " library Math.sol:Math")
	assert.NotContains(t, lines[2], "immutable")
	assert.Contains(t, lines[3], "ADD")
}

// TestReportLookup will test naming selectors, calldata and revert data with a signature database
func TestReportLookup(t *testing.T) {
	_, result := buildCounter(t)

	database, err := signatures.Open(filepath.Join(t.TempDir(), "signatures.db"))
	require.NoError(t, err)
	defer database.Close()
	_, err = database.RecordModel(result.Model)
	require.NoError(t, err)

	word := strings.Repeat("00", 31)
	errorStringData := "0x08c379a0" + word + "20" + word + "02" + "6869" + strings.Repeat("00", 30)
	panicData := "0x4e487b71" + word + "12"

	testCases := []struct {
		arg      string
		expected string
	}{
		{"0x371303c0", "0x371303c0 function inc() (Counter.sol:Counter)"},
		{"371303c0" + word + "01", "0x371303c0 function inc() (Counter.sol:Counter)"},
		{"0xdeadbeef", "0xdeadbeef unknown"},
		{errorStringData, `0x08c379a0 Error(string): "hi"`},
		{panicData, "0x4e487b71 panic: division by zero"},
	}
	for _, tc := range testCases {
		buffer := logging.NewLogBuffer()
		require.NoError(t, reportLookup(buffer, database, tc.arg), tc.arg)
		assert.Equal(t, tc.expected+"\n", buffer.String(), tc.arg)
	}

	assert.Error(t, reportLookup(logging.NewLogBuffer(), database, "0x1234"))
	assert.Error(t, reportLookup(logging.NewLogBuffer(), database, "0xzz"))
}

// TestWriteInitConfig will test that init writes a valid configuration and only overwrites it when forced
func TestWriteInitConfig(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), DefaultProjectConfigFilename)

	cmd := &cobra.Command{Use: "init"}
	cmd.Flags().Bool("force", false, "")
	cmd.Flags().String("input", "", "")
	cmd.Flags().String("output", "", "")
	require.NoError(t, cmd.Flags().Set("input", "build/input.json"))

	require.NoError(t, writeInitConfig(cmd, outputPath))
	projectConfig, err := config.ReadProjectConfigFromFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, "build/input.json", projectConfig.Artifacts.InputPath)

	// The existing file is kept unless --force is set
	assert.Error(t, writeInitConfig(cmd, outputPath))
	require.NoError(t, cmd.Flags().Set("force", "true"))
	assert.NoError(t, writeInitConfig(cmd, outputPath))
}
