package jobs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weldJob() Job {
	return Job{
		ProcessName: "Weld",
		ProcessNo:   "P1",
		StepNo:      "1",
		MachineNo:   Machine("M3"),
		Status:      StatusOpen,
	}
}

func sampleCache() Cache {
	return Cache{
		{ProcessName: "Cut", ProcessNo: "P0", StepNo: "1", MachineNo: Machine("M1"), Status: StatusOpen, ProjectNo: "PR-9"},
		weldJob(),
		{ProcessName: "Paint", ProcessNo: "P2", StepNo: "3", Status: StatusPause},
	}
}

func cloneCache(c Cache) Cache {
	out := make(Cache, len(c))
	copy(out, c)
	return out
}

func TestApply_Add(t *testing.T) {
	cache := sampleCache()
	job := Job{ProcessName: "Drill", ProcessNo: "P5", StepNo: "2", MachineNo: Machine("D1"), Status: StatusOpen}
	ambient := Ambient{ProjectNo: "PR-100", PartName: "Bracket"}

	result := Apply(cache, AddIntent(job), ambient)

	require.Len(t, result.Cache, len(cache)+1)
	assert.True(t, result.Matched)
	last := result.Cache[len(result.Cache)-1]
	assert.True(t, last.Key().Equal(job.Key()))
	assert.Equal(t, StatusOpen, last.Status)
	assert.Equal(t, "PR-100", last.ProjectNo)
	assert.Equal(t, "Bracket", last.PartName)
}

func TestApply_AddToNilCache(t *testing.T) {
	result := Apply(nil, AddIntent(weldJob()), Ambient{})
	require.Len(t, result.Cache, 1)
	assert.Equal(t, StatusOpen, result.Cache[0].Status)
}

func TestApply_UpdateHit(t *testing.T) {
	cache := sampleCache()
	key := weldJob().Key()

	result := Apply(cache, UpdateIntent(key, StatusPause), Ambient{})

	require.Len(t, result.Cache, len(cache))
	assert.True(t, result.Matched)
	idx := result.Cache.Find(key)
	require.NotEqual(t, -1, idx)
	assert.Equal(t, StatusPause, result.Cache[idx].Status)

	want := cache[idx]
	want.Status = StatusPause
	assert.Equal(t, want, result.Cache[idx])
	assert.Equal(t, cache[0], result.Cache[0])
	assert.Equal(t, cache[2], result.Cache[2])
}

func TestApply_UpdateMiss(t *testing.T) {
	cache := sampleCache()
	key := JobKey{ProcessName: "Weld", ProcessNo: "P1", StepNo: "1", MachineNo: Machine("M4")}

	result := Apply(cache, UpdateIntent(key, StatusPause), Ambient{})

	assert.False(t, result.Matched)
	assert.Equal(t, cache, result.Cache)
}

func TestApply_RemoveHit(t *testing.T) {
	cache := sampleCache()
	key := weldJob().Key()

	result := Apply(cache, RemoveIntent(key), Ambient{})

	assert.True(t, result.Matched)
	require.Len(t, result.Cache, len(cache)-1)
	assert.Equal(t, -1, result.Cache.Find(key))
	assert.Equal(t, "Cut", result.Cache[0].ProcessName)
	assert.Equal(t, "Paint", result.Cache[1].ProcessName)
}

func TestApply_RemoveMiss(t *testing.T) {
	cache := sampleCache()
	key := JobKey{ProcessName: "Grind", ProcessNo: "P9", StepNo: "1"}

	result := Apply(cache, RemoveIntent(key), Ambient{})

	assert.False(t, result.Matched)
	assert.Equal(t, cache, result.Cache)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	key := weldJob().Key()
	intents := []struct {
		name   string
		intent ChangeIntent
	}{
		{"add", AddIntent(Job{ProcessName: "Drill", ProcessNo: "P5", StepNo: "2", Status: StatusOpen})},
		{"update", UpdateIntent(key, StatusPause)},
		{"remove first", RemoveIntent(sampleCache()[0].Key())},
		{"remove middle", RemoveIntent(key)},
		{"update miss", UpdateIntent(JobKey{ProcessName: "none"}, StatusPause)},
	}

	for _, tt := range intents {
		t.Run(tt.name, func(t *testing.T) {
			// Spare capacity would let a careless append write into the caller's array
			cache := make(Cache, 0, 10)
			cache = append(cache, sampleCache()...)
			before := cloneCache(cache)

			result := Apply(cache, tt.intent, Ambient{ProjectNo: "X"})

			assert.Equal(t, before, cache)
			assert.Equal(t, Job{}, cache[:cap(cache)][len(cache)])
			if len(result.Cache) > 0 && len(cache) > 0 {
				assert.NotSame(t, &cache[0], &result.Cache[0])
			}
		})
	}
}

func TestApply_Scenario(t *testing.T) {
	var cache Cache
	job := weldJob()

	r := Apply(cache, AddIntent(job), Ambient{})
	require.Len(t, r.Cache, 1)
	assert.Equal(t, StatusOpen, r.Cache[0].Status)

	key := JobKey{ProcessName: "Weld", ProcessNo: "P1", StepNo: "1", MachineNo: Machine("M3")}
	r = Apply(r.Cache, UpdateIntent(key, StatusPause), Ambient{})
	require.Len(t, r.Cache, 1)
	assert.Equal(t, StatusPause, r.Cache[0].Status)

	r = Apply(r.Cache, RemoveIntent(key), Ambient{})
	assert.Empty(t, r.Cache)
}

func TestJobKey_Equal(t *testing.T) {
	base := JobKey{ProcessName: "Weld", ProcessNo: "P1", StepNo: "1"}
	with := func(m *string) JobKey {
		k := base
		k.MachineNo = m
		return k
	}

	tests := []struct {
		name  string
		a, b  JobKey
		equal bool
	}{
		{"both nil", with(nil), with(nil), true},
		{"nil vs empty", with(nil), with(Machine("")), false},
		{"empty vs empty", with(Machine("")), with(Machine("")), true},
		{"empty vs value", with(Machine("")), with(Machine("M1")), false},
		{"same value different pointer", with(Machine("M1")), with(Machine("M1")), true},
		{"different step", with(nil), JobKey{ProcessName: "Weld", ProcessNo: "P1", StepNo: "2"}, false},
		{"different process name", with(nil), JobKey{ProcessName: "weld", ProcessNo: "P1", StepNo: "1"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
			assert.Equal(t, tt.equal, tt.b.Equal(tt.a))
		})
	}
}

func TestApply_MachineNoNilVersusEmpty(t *testing.T) {
	cache := Cache{{ProcessName: "Assembly", ProcessNo: "P7", StepNo: "1", MachineNo: nil, Status: StatusOpen}}
	emptyKey := JobKey{ProcessName: "Assembly", ProcessNo: "P7", StepNo: "1", MachineNo: Machine("")}

	result := Apply(cache, RemoveIntent(emptyKey), Ambient{})

	assert.False(t, result.Matched)
	assert.Len(t, result.Cache, 1)
}

func TestJob_DecodeIdentifiers(t *testing.T) {
	var decoded []Job
	data := `[
		{"processName":"QC","processNo":1,"stepNo":"1","machineNo":"QC01","status":"OPEN"},
		{"processName":"Assembly","processNo":"P7","stepNo":2,"machineNo":null,"status":"PAUSE"},
		{"processName":"Assembly","processNo":"P8","stepNo":"1","status":"OPEN"}
	]`
	require.NoError(t, json.Unmarshal([]byte(data), &decoded))
	require.Len(t, decoded, 3)

	assert.Equal(t, Ident("1"), decoded[0].ProcessNo)
	assert.Equal(t, "QC01", *decoded[0].MachineNo)
	assert.Equal(t, Ident("2"), decoded[1].StepNo)
	assert.Nil(t, decoded[1].MachineNo)
	assert.Nil(t, decoded[2].MachineNo)

	var bad Job
	assert.Error(t, json.Unmarshal([]byte(`{"processNo":{"x":1}}`), &bad))
}

func TestStatus(t *testing.T) {
	tests := []struct {
		status Status
		open   bool
		paused bool
	}{
		{StatusOpen, true, false},
		{StatusPause, true, true},
		{Status("PAUSE_BREAK"), true, true},
		{StatusClose, false, false},
		{Status(""), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.open, tt.status.IsOpen())
			assert.Equal(t, tt.paused, tt.status.IsPaused())
		})
	}
}
