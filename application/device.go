package application

// StatusEntry is a single reported data point of a device. Codes are unique
// within one snapshot.
type StatusEntry struct {
	Code  string `json:"code"`
	Value any    `json:"value"`
}

// DeviceSnapshot is one point-in-time read of a device. The envelope fields
// (Success, T, TID) are flattened in so cached payloads keep the field names
// the upstream API uses.
type DeviceSnapshot struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Online  bool          `json:"online"`
	Icon    string        `json:"icon,omitempty"`
	Status  []StatusEntry `json:"status"`
	Success bool          `json:"success"`
	T       int64         `json:"t"`
	TID     string        `json:"tid"`
}

func (s DeviceSnapshot) Clone() DeviceSnapshot {
	c := s
	if s.Status != nil {
		c.Status = make([]StatusEntry, len(s.Status))
		copy(c.Status, s.Status)
	}
	return c
}

// SnapshotBatch is the full set of snapshots from one poll, ordered by
// request order.
type SnapshotBatch []DeviceSnapshot

// Clone deep-copies the batch. Caches hand out clones so callers can never
// mutate the cached state.
func (b SnapshotBatch) Clone() SnapshotBatch {
	if b == nil {
		return nil
	}
	c := make(SnapshotBatch, len(b))
	for i, s := range b {
		c[i] = s.Clone()
	}
	return c
}

// Find returns the snapshot with the given device id, if present.
func (b SnapshotBatch) Find(deviceID string) (DeviceSnapshot, bool) {
	for _, s := range b {
		if s.ID == deviceID {
			return s, true
		}
	}
	return DeviceSnapshot{}, false
}
