package domain

import "time"

// InstalledRecord describes the package currently installed in a directory.
type InstalledRecord struct {
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	From        string    `json:"from,omitempty"`
	Commit      string    `json:"commit,omitzero"`
	Digest      string    `json:"digest,omitzero"`
	InstalledAt time.Time `json:"installedAt,omitzero"`
}

// NewInstalledRecord builds the record written for node.
func NewInstalledRecord(node *PackageNode, digest string, at time.Time) InstalledRecord {
	return InstalledRecord{
		Name:        node.Name,
		Version:     node.ID(),
		From:        node.From(),
		Commit:      node.Resolved.Commit,
		Digest:      digest,
		InstalledAt: at.UTC(),
	}
}
