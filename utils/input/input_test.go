package input

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/microsim-oss/utils/config"
)

const sampleNetXML = `<?xml version="1.0" encoding="UTF-8"?>
<net version="1.3">
    <edge id="e1" from="n0" to="n1">
        <lane id="e1_0" index="0" speed="13.89" length="100.00"/>
        <lane id="e1_1" index="1" speed="13.89" length="100.00"/>
    </edge>
    <edge id=":n1_0" function="internal">
        <lane id=":n1_0_0" index="0" length="4.50"/>
    </edge>
    <edge id="e2" from="n1" to="n2" speed="20">
        <lane id="e2_0" index="0" length="150.00"/>
    </edge>
    <connection from="e1" to="e2" fromLane="0" toLane="0" via=":n1_0_0"/>
    <connection from=":n1_0" to="e2" fromLane="0" toLane="0"/>
</net>`

func writeTemp(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadNetXML(t *testing.T) {
	path := writeTemp(t, "sample.net.xml", sampleNetXML)
	data, err := LoadNetXML(path)
	require.NoError(t, err)

	want := &NetData{
		Edges: []Edge{
			{ID: "e1", Length: 100, NumLanes: 2, Speed: 13.89},
			{ID: ":n1_0", Length: 4.5, NumLanes: 1, Speed: defaultSpeed},
			{ID: "e2", Length: 150, NumLanes: 1, Speed: 20},
		},
		Connections: []Connection{
			{From: "e1", FromLane: 0, To: "e2", ToLane: 0, Via: ":n1_0_0"},
			{From: ":n1_0", FromLane: 0, To: "e2", ToLane: 0},
		},
	}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Errorf("LoadNetXML mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadNetXMLEdgeWithoutLane(t *testing.T) {
	path := writeTemp(t, "bad.net.xml", `<net><edge id="e1"/></net>`)
	_, err := LoadNetXML(path)
	assert.Error(t, err)
}

func TestInitFromJSONFile(t *testing.T) {
	want := &NetData{
		Edges: []Edge{
			{ID: "a", Length: 50, NumLanes: 1, Speed: 30},
			{ID: "b", Length: 60, NumLanes: 2, Speed: 25},
		},
		Connections: []Connection{
			{From: "a", FromLane: 0, To: "b", ToLane: 1},
		},
	}
	raw, err := json.Marshal(want)
	require.NoError(t, err)
	path := writeTemp(t, "net.json", string(raw))

	c := config.Config{}
	c.Input.Network.File = path
	data, err := Init(c, "")
	require.NoError(t, err)
	if diff := cmp.Diff(want, data); diff != "" {
		t.Errorf("Init mismatch (-want +got):\n%s", diff)
	}
}

func TestInitRejectsDuplicateEdge(t *testing.T) {
	raw, err := json.Marshal(&NetData{
		Edges: []Edge{
			{ID: "a", Length: 50, NumLanes: 1, Speed: 30},
			{ID: "a", Length: 60, NumLanes: 1, Speed: 30},
		},
	})
	require.NoError(t, err)
	path := writeTemp(t, "dup.json", string(raw))

	c := config.Config{}
	c.Input.Network.File = path
	_, err = Init(c, "")
	assert.Error(t, err)
}

func TestInitFromCache(t *testing.T) {
	cacheDir := t.TempDir()
	want := &NetData{
		Edges: []Edge{{ID: "a", Length: 50, NumLanes: 1, Speed: 30}},
	}
	raw, err := json.Marshal(want)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, "db.net.json"), raw, 0644))

	c := config.Config{}
	c.Input.Network.DB = "db"
	c.Input.Network.Col = "net"
	data, err := Init(c, cacheDir)
	require.NoError(t, err)
	if diff := cmp.Diff(want, data); diff != "" {
		t.Errorf("cache mismatch (-want +got):\n%s", diff)
	}
}

func TestInitOnlyCacheMissing(t *testing.T) {
	c := config.Config{}
	c.Input.Network.DB = "db"
	c.Input.Network.Col = "net"
	c.Input.Network.OnlyCache = true
	_, err := Init(c, t.TempDir())
	assert.Error(t, err)
}
