package jobs

// Cache is the ordered list of open jobs. A nil Cache is an empty list.
type Cache []Job

// Find returns the index of the job matching key, or -1
func (c Cache) Find(key JobKey) int {
	for i := range c {
		if c[i].Key().Equal(key) {
			return i
		}
	}
	return -1
}

// ChangeKind is the kind of speculative mutation
type ChangeKind int

const (
	ChangeAdd ChangeKind = iota + 1
	ChangeUpdate
	ChangeRemove
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdd:
		return "add"
	case ChangeUpdate:
		return "update"
	case ChangeRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// ChangeIntent describes one speculative mutation of the open-jobs list.
// Job is set for adds, Key (and Status for updates) otherwise.
type ChangeIntent struct {
	Kind   ChangeKind
	Job    Job
	Key    JobKey
	Status Status
}

func AddIntent(job Job) ChangeIntent {
	return ChangeIntent{Kind: ChangeAdd, Job: job, Key: job.Key()}
}

func UpdateIntent(key JobKey, status Status) ChangeIntent {
	return ChangeIntent{Kind: ChangeUpdate, Key: key, Status: status}
}

func RemoveIntent(key JobKey) ChangeIntent {
	return ChangeIntent{Kind: ChangeRemove, Key: key}
}

// Ambient holds the scan-context fields copied onto locally added jobs
type Ambient struct {
	ProjectNo string
	PartName  string
}

// ApplyResult is the outcome of Apply
type ApplyResult struct {
	Cache Cache
	// Matched is false when an update or remove found no job with the key
	Matched bool
}

// Apply returns a new cache with the intent applied. The input slice is never
// written to. Updates and removes of a key that is not in the cache leave the
// contents unchanged.
func Apply(cache Cache, intent ChangeIntent, ambient Ambient) ApplyResult {
	next := make(Cache, len(cache), len(cache)+1)
	copy(next, cache)

	switch intent.Kind {
	case ChangeAdd:
		job := intent.Job
		job.ProjectNo = ambient.ProjectNo
		job.PartName = ambient.PartName
		return ApplyResult{Cache: append(next, job), Matched: true}

	case ChangeUpdate:
		idx := next.Find(intent.Key)
		if idx == -1 {
			return ApplyResult{Cache: next}
		}
		next[idx].Status = intent.Status
		return ApplyResult{Cache: next, Matched: true}

	case ChangeRemove:
		idx := next.Find(intent.Key)
		if idx == -1 {
			return ApplyResult{Cache: next}
		}
		return ApplyResult{Cache: append(next[:idx], next[idx+1:]...), Matched: true}
	}

	return ApplyResult{Cache: next}
}
