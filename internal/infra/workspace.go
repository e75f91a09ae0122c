package infra

import (
	"fmt"
	"os"

	"github.com/Vovarama1992/slide_render/internal/ports"
)

const workspacePrefix = "slideconv-"

type TempWorkspaceManager struct {
	root string
}

// NewTempWorkspaceManager создаёт менеджер рабочих директорий под root.
// Пустой root — системный temp.
func NewTempWorkspaceManager(root string) *TempWorkspaceManager {
	if root == "" {
		root = os.TempDir()
	}
	return &TempWorkspaceManager{root: root}
}

// Acquire — уникальность пути даёт случайный суффикс MkdirTemp,
// никаких локов не требуется.
func (m *TempWorkspaceManager) Acquire() (ports.Workspace, error) {
	dir, err := os.MkdirTemp(m.root, workspacePrefix+"*")
	if err != nil {
		return ports.Workspace{}, fmt.Errorf("create workspace: %w", err)
	}
	return ports.Workspace{Dir: dir}, nil
}

func (m *TempWorkspaceManager) Release(ws ports.Workspace) error {
	if ws.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(ws.Dir); err != nil {
		return fmt.Errorf("remove workspace %s: %w", ws.Dir, err)
	}
	return nil
}
