package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/scaffold-split/pkg/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleCan = "CC\tethane\t1.0\nCCC\tpropane\t2.0\nc1ccccc1\tbenzene\t3.0\n"

func TestSplitCmd_WritesArtifacts(t *testing.T) {
	in := writeFile(t, "sample.can", sampleCan)
	outDir := t.TempDir()

	out, err := execute(t, "-o", "json", "split", in,
		"--train-size", "0.67", "--test-size", "0.33", "--out", outDir)
	require.NoError(t, err)

	var summary splitSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, "sample", summary.Input)
	assert.Equal(t, "greedy", summary.Policy)
	assert.Equal(t, 3, summary.Molecules)
	assert.Equal(t, 2, summary.Scaffolds)
	assert.Equal(t, 2, summary.Train.Molecules)
	assert.Equal(t, 1, summary.Test.Molecules)
	assert.Len(t, summary.Artifacts, 5)

	train, err := os.ReadFile(filepath.Join(outDir, "train.can"))
	require.NoError(t, err)
	assert.Equal(t, "CC\tethane\t1.0\nCCC\tpropane\t2.0\n", string(train))

	test, err := os.ReadFile(filepath.Join(outDir, "test.can"))
	require.NoError(t, err)
	assert.Equal(t, "c1ccccc1\tbenzene\t3.0\n", string(test))
}

func TestSplitCmd_TableOutput(t *testing.T) {
	in := writeFile(t, "sample.can", sampleCan)

	out, err := execute(t, "-o", "table", "split", in,
		"--train-size", "0.67", "--test-size", "0.33", "--out", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "PARTITION")
	assert.Contains(t, out, "train      2          1          0.6667")
}

func TestSplitCmd_HelpWarnsAboutNotation(t *testing.T) {
	out, err := execute(t, "split", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Aromaticity is not perceived")
	assert.Contains(t, out, "C1=CC=CC=C1")
}

func TestSplitCmd_InvalidSizes(t *testing.T) {
	in := writeFile(t, "sample.can", sampleCan)

	_, err := execute(t, "split", in, "--train-size", "0.7", "--test-size", "0.2", "--out", t.TempDir())
	assert.True(t, errors.IsCode(err, errors.ErrCodeSplitSizesInvalid))
}

func TestSplitCmd_BadMolecule(t *testing.T) {
	in := writeFile(t, "bad.can", "CC\ta\nC1CC\tb\n")

	_, err := execute(t, "split", in, "--out", t.TempDir())
	assert.True(t, errors.IsCode(err, errors.ErrCodeScaffoldExtractionFailed))
}

func TestSplitCmd_MissingFile(t *testing.T) {
	_, err := execute(t, "split", filepath.Join(t.TempDir(), "nope.can"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatasetParseFailed))
}

func TestIndexCmd(t *testing.T) {
	in := writeFile(t, "sample.can", "c1ccccc1C\nCC\nc1ccccc1C\nCCC\n")

	out, err := execute(t, "index", in)
	require.NoError(t, err)
	assert.Equal(t, "c1ccccc1\t2\t0,2\n<acyclic>\t2\t1,3\n", out)

	out, err = execute(t, "index", in, "--identity", "value")
	require.NoError(t, err)
	assert.Equal(t, "c1ccccc1\t1\tc1ccccc1C\n<acyclic>\t2\tCC,CCC\n", out)

	_, err = execute(t, "index", in, "--identity", "both")
	assert.True(t, errors.IsCode(err, errors.ErrCodeIdentityModeInvalid))
}

func TestScaffoldCmd(t *testing.T) {
	out, err := execute(t, "scaffold", "Cc1ccccc1", "CCO")
	require.NoError(t, err)
	assert.Equal(t, "Cc1ccccc1\tc1ccccc1\nCCO\t\n", out)

	out, err = execute(t, "-o", "json", "scaffold", "c1ccccc1C")
	require.NoError(t, err)
	var rows []scaffoldRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, scaffoldRow{SMILES: "c1ccccc1C", Canonical: "Cc1ccccc1", Scaffold: "c1ccccc1"}, rows[0])

	_, err = execute(t, "scaffold", "C1CC")
	assert.True(t, errors.IsCode(err, errors.ErrCodeScaffoldExtractionFailed))
}

func TestConvertCmd(t *testing.T) {
	in := writeFile(t, "esol.csv",
		"Compound ID,smiles,measured log solubility in mols per litre\n"+
			"Amigdalin,OCC3OC(OCC2OC(OC(C#N)c1ccccc1)C(O)C(O)C2O)C(O)C(O)C3O,-0.77\n"+
			"Fenfuram,Cc1occc1C(=O)Nc2ccccc2,-3.3\n")
	outPath := filepath.Join(t.TempDir(), "esol.can")

	out, err := execute(t, "convert", in, outPath)
	require.NoError(t, err)
	assert.Equal(t, "wrote 2 molecules to "+outPath+"\n", out)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t,
		"OCC3OC(OCC2OC(OC(C#N)c1ccccc1)C(O)C(O)C2O)C(O)C(O)C3O\tAmigdalin\t-0.77\n"+
			"Cc1occc1C(=O)Nc2ccccc2\tFenfuram\t-3.3\n", string(data))

	out, err = execute(t, "convert", in, "-", "--smiles-col", "smiles")
	require.NoError(t, err)
	assert.Contains(t, out, "Fenfuram")

	_, err = execute(t, "convert", in, outPath, "--smiles-col", "SMILES")
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatasetColumnMissing))
}

func TestManifestCmd(t *testing.T) {
	in := writeFile(t, "sample.can", sampleCan)
	outDir := t.TempDir()

	out, err := execute(t, "-o", "json", "split", in, "--out", outDir,
		"--train-size", "0.67", "--test-size", "0.33")
	require.NoError(t, err)
	var written splitSummary
	require.NoError(t, json.Unmarshal([]byte(out), &written))

	for _, path := range []string{outDir, filepath.Join(outDir, "manifest.yaml")} {
		out, err = execute(t, "-o", "json", "manifest", path)
		require.NoError(t, err)
		var read splitSummary
		require.NoError(t, json.Unmarshal([]byte(out), &read))
		assert.Equal(t, written.RunID, read.RunID)
		assert.Equal(t, written.Train, read.Train)
		assert.Equal(t, written.Test, read.Test)
		assert.Equal(t, []string{"train.can", "test.can", "train.idx", "test.idx"}, read.Artifacts)
	}

	_, err = execute(t, "manifest", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))

	_, err = execute(t, "manifest", writeFile(t, "broken.yaml", "train: [\n"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization))
}

func TestCachePurgeCmd(t *testing.T) {
	mr := miniredis.RunT(t)
	cfgPath := writeFile(t, "scafsplit.yaml",
		"log:\n  level: warn\nredis:\n  enabled: true\n  addr: "+mr.Addr()+"\n")
	in := writeFile(t, "sample.can", sampleCan)

	_, err := executeWithConfig(t, cfgPath, "split", in, "--out", t.TempDir())
	require.NoError(t, err)
	cached := len(mr.Keys())
	require.Positive(t, cached)

	out, err := executeWithConfig(t, cfgPath, "cache", "purge")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("purged %d cached scaffolds\n", cached), out)
	assert.Empty(t, mr.Keys())
}

func TestCachePurgeCmd_CacheDisabled(t *testing.T) {
	_, err := execute(t, "cache", "purge")
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))
}

//Personal.AI order the ending
