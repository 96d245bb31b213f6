// server/http/handlers.go
package http

import (
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/ViniZap4/carnet-server/diff"
	"github.com/ViniZap4/carnet-server/domain"
	"github.com/ViniZap4/carnet-server/filesystem"
	"github.com/ViniZap4/carnet-server/search"
)

// rootFor returns the root named by the request, or the default one.
func (s *Server) rootFor(given string) (string, error) {
	if given != "" {
		return given, nil
	}
	if s.root == "" {
		return "", domain.NewError(domain.KindInvalidRoot, "http.rootFor", nil, "no root given and none configured")
	}
	return s.root, nil
}

// existingRoot resolves root and checks it is a directory.
func (s *Server) existingRoot(given string) (string, error) {
	root, err := s.rootFor(given)
	if err != nil {
		return "", err
	}
	canon, err := filesystem.Resolve(root, "")
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(canon); err != nil || !info.IsDir() {
		return "", domain.NewError(domain.KindRootNotFound, "http.existingRoot", err, root)
	}
	return canon, nil
}

// track records the outcome of op and logs successful mutations.
func (s *Server) track(c *fiber.Ctx, op, root, path string, mutating bool, err error) error {
	s.metrics.Operation(op, err)
	if err == nil && mutating {
		s.log.Info().
			Str("request_id", requestID(c)).
			Str("op", op).
			Str("root", root).
			Str("path", path).
			Msg("done")
	}
	return err
}

func (s *Server) handleTree(c *fiber.Ctx) error {
	root, err := s.rootFor(c.Query("root"))
	if err != nil {
		return err
	}
	nodes, err := filesystem.ListTree(root)
	if err := s.track(c, "list_tree", root, "", false, err); err != nil {
		return err
	}
	return c.JSON(nodes)
}

func (s *Server) handleReadNote(c *fiber.Ctx) error {
	root, err := s.rootFor(c.Query("root"))
	if err != nil {
		return err
	}
	path := c.Query("path")
	content, err := filesystem.ReadNote(root, path)
	if err := s.track(c, "read_note", root, path, false, err); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"content": content})
}

type writeNoteRequest struct {
	Root    string `json:"root"`
	Path    string `json:"path"`
	Content string `json:"content"`
}

func (s *Server) handleWriteNote(c *fiber.Ctx) error {
	var req writeNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	root, err := s.rootFor(req.Root)
	if err != nil {
		return err
	}
	err = filesystem.WriteNote(root, req.Path, req.Content)
	if err := s.track(c, "write_note", root, req.Path, true, err); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type createFolderRequest struct {
	Root   string `json:"root"`
	Parent string `json:"parent"`
	Name   string `json:"name"`
}

func (s *Server) handleCreateFolder(c *fiber.Ctx) error {
	var req createFolderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	root, err := s.rootFor(req.Root)
	if err != nil {
		return err
	}
	path, err := filesystem.CreateFolder(root, req.Parent, req.Name)
	if err := s.track(c, "create_folder", root, path, true, err); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"path": path})
}

type createNoteRequest struct {
	Root string `json:"root"`
	Dir  string `json:"dir"`
	Name string `json:"name"`
}

func (s *Server) handleCreateNote(c *fiber.Ctx) error {
	var req createNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	root, err := s.rootFor(req.Root)
	if err != nil {
		return err
	}
	path, err := filesystem.CreateNote(root, req.Dir, req.Name)
	if err := s.track(c, "create_note", root, path, true, err); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"path": path})
}

type renameRequest struct {
	Root    string `json:"root"`
	Path    string `json:"path"`
	NewName string `json:"new_name"`
}

func (s *Server) handleRename(c *fiber.Ctx) error {
	var req renameRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	root, err := s.rootFor(req.Root)
	if err != nil {
		return err
	}
	path, err := filesystem.RenamePath(root, req.Path, req.NewName)
	if err := s.track(c, "rename_path", root, path, true, err); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"path": path})
}

func (s *Server) handleDelete(c *fiber.Ctx) error {
	root, err := s.rootFor(c.Query("root"))
	if err != nil {
		return err
	}
	path := c.Query("path")
	err = filesystem.DeletePath(root, path)
	if err := s.track(c, "delete_path", root, path, true, err); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleSearch(c *fiber.Ctx) error {
	root, err := s.rootFor(c.Query("root"))
	if err != nil {
		return err
	}
	results, err := search.Search(c.UserContext(), root, c.Query("q"))
	if err := s.track(c, "search", root, "", false, err); err != nil {
		return err
	}
	return c.JSON(results)
}

type diffRequest struct {
	Original string `json:"original"`
	Current  string `json:"current"`
	// Unified asks for the rendered diff alongside the counts.
	Unified bool `json:"unified"`
}

func (s *Server) handleDiff(c *fiber.Ctx) error {
	var req diffRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	res := s.diff.Calculate(req.Original, req.Current)
	s.metrics.DiffCacheSize.Set(float64(s.diff.Len()))
	if req.Unified {
		text, err := diff.Unified(req.Original, req.Current, 3)
		if err != nil {
			return err
		}
		res.DiffContent = text
	}
	s.metrics.Operation("diff", nil)
	return c.JSON(res)
}

func (s *Server) handleGetSettings(c *fiber.Ctx) error {
	root, err := s.existingRoot(c.Query("root"))
	if err != nil {
		return err
	}
	settings, err := s.settings.Load(root)
	if err := s.track(c, "load_settings", root, "", false, err); err != nil {
		return err
	}
	return c.JSON(settings)
}

func (s *Server) handlePutSettings(c *fiber.Ctx) error {
	root, err := s.existingRoot(c.Query("root"))
	if err != nil {
		return err
	}
	settings := domain.DefaultSettings()
	if err := c.BodyParser(&settings); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	err = s.settings.Save(root, settings)
	if err := s.track(c, "save_settings", root, "", true, err); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type lastRootBody struct {
	Root *string `json:"root"`
}

func (s *Server) handleGetLastRoot(c *fiber.Ctx) error {
	root, err := s.roots.LastRoot(c.UserContext())
	if err := s.track(c, "last_root", "", "", false, err); err != nil {
		return err
	}
	return c.JSON(lastRootBody{Root: root})
}

func (s *Server) handlePutLastRoot(c *fiber.Ctx) error {
	var req lastRootBody
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	var root string
	if req.Root != nil {
		root = *req.Root
	}
	err := s.roots.SaveLastRoot(c.UserContext(), req.Root)
	if err := s.track(c, "save_last_root", root, "", true, err); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
