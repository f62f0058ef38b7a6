package domain

// IDMap translates source-portal object ids to their destination-portal
// counterparts. An entry is added only once the destination object is
// confirmed to exist, so a present key is always safe to use.
type IDMap map[string]string

// Put records a confirmed source→destination pair. Empty ids are ignored so
// a failed create can never leave a half-mapped entry behind.
func (m IDMap) Put(sourceID, destID string) {
	if sourceID == "" || destID == "" {
		return
	}
	m[sourceID] = destID
}

// Lookup returns the destination id for a source id.
func (m IDMap) Lookup(sourceID string) (string, bool) {
	destID, ok := m[sourceID]
	return destID, ok
}

// Translate maps each source id through m, returning the destination ids and
// the number of ids that had no mapping.
func (m IDMap) Translate(sourceIDs []string) (destIDs []string, skipped int) {
	for _, id := range sourceIDs {
		if destID, ok := m[id]; ok {
			destIDs = append(destIDs, destID)
		} else {
			skipped++
		}
	}
	return destIDs, skipped
}
