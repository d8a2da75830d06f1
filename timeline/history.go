package timeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// History returns the History view of the model, containing methods to
// manipulate the undo/redo history and to save recovery files.
func (m *Model) History() *HistoryModel { return (*HistoryModel)(m) }

type HistoryModel Model

// Undo returns an Action to undo the last change.
func (m *HistoryModel) Undo() Action { return MakeAction((*historyUndo)(m)) }

type historyUndo HistoryModel

func (m *historyUndo) Enabled() bool { return len(m.undoStack) > 0 }
func (m *historyUndo) Do() {
	m.redoStack = append(m.redoStack, m.d.Copy())
	if len(m.redoStack) > maxUndo {
		copy(m.redoStack, m.redoStack[len(m.redoStack)-maxUndo:])
		m.redoStack = m.redoStack[:maxUndo]
	}
	(*Model)(m).restore(m.undoStack[len(m.undoStack)-1])
	m.undoStack = m.undoStack[:len(m.undoStack)-1]
}

// Redo returns an Action to redo the last undone change.
func (m *HistoryModel) Redo() Action { return MakeAction((*historyRedo)(m)) }

type historyRedo HistoryModel

func (m *historyRedo) Enabled() bool { return len(m.redoStack) > 0 }
func (m *historyRedo) Do() {
	(*Model)(m).pushUndo(m.d.Copy())
	(*Model)(m).restore(m.redoStack[len(m.redoStack)-1])
	m.redoStack = m.redoStack[:len(m.redoStack)-1]
}

// restore brings back the song of d. The view state and the file paths stay
// as they are, only the song travels in time.
func (m *Model) restore(d modelData) {
	m.d.Song = d.Song
	m.prevUndoKind = ""
	m.d.ChangedSinceSave = true
	m.d.ChangedSinceRecovery = true
	m.songChanged()
}

// MarshalRecovery marshals the current model data for a recovery file and
// removes the recovery file on disk.
func (m *HistoryModel) MarshalRecovery() []byte {
	out, err := json.Marshal(m.d)
	if err != nil {
		return nil
	}
	if m.d.RecoveryFilePath != "" {
		os.Remove(m.d.RecoveryFilePath)
	}
	m.d.ChangedSinceRecovery = false
	return out
}

// SaveRecovery writes the model data to the recovery file if anything has
// changed since the last save.
func (m *HistoryModel) SaveRecovery() error {
	if !m.d.ChangedSinceRecovery {
		return nil
	}
	if m.d.RecoveryFilePath == "" {
		return errors.New("no recovery file path")
	}
	out, err := json.Marshal(m.d)
	if err != nil {
		return fmt.Errorf("could not marshal recovery data: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.d.RecoveryFilePath), os.ModePerm); err != nil {
		return fmt.Errorf("could not create recovery directory: %w", err)
	}
	if err := os.WriteFile(m.d.RecoveryFilePath, out, 0644); err != nil {
		return fmt.Errorf("could not write recovery file: %w", err)
	}
	m.d.ChangedSinceRecovery = false
	return nil
}

// UnmarshalRecovery restores the model data from b; if the recovery file
// named in it exists on disk, that is loaded instead.
func (m *HistoryModel) UnmarshalRecovery(b []byte) error {
	var data modelData
	if err := json.Unmarshal(b, &data); err != nil {
		return fmt.Errorf("could not unmarshal recovery data: %w", err)
	}
	if data.RecoveryFilePath != "" {
		if b2, err := os.ReadFile(data.RecoveryFilePath); err == nil {
			var onDisk modelData
			if json.Unmarshal(b2, &onDisk) == nil {
				onDisk.RecoveryFilePath = data.RecoveryFilePath
				data = onDisk
			}
		}
	}
	m.d = data
	m.d.ChangedSinceRecovery = false
	m.gesture.Cancel()
	(*Model)(m).songChanged()
	return nil
}
