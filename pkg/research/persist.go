package research

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kadirpekel/deepresearch/pkg/research/history"
)

const knowledgeEntrySeparator = "<!-- HERMES_KNOWLEDGE_ENTRY_SEPARATOR -->"

var nonSlugChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeTitle turns a node or artifact title into a safe path segment,
// collapsing whitespace and punctuation runs into single hyphens.
func SanitizeTitle(title string) string {
	s := nonSlugChars.ReplaceAllString(strings.TrimSpace(title), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "untitled"
	}
	return s
}

// Metadata is research_metadata.json: run-level facts that live above
// any single node.
type Metadata struct {
	CreatedAt     time.Time `json:"created_at"`
	LastUpdated   time.Time `json:"last_updated"`
	RootNodeTitle string    `json:"root_node_title"`
}

// nodeStateDoc is node_state.json.
type nodeStateDoc struct {
	ArtifactsStatus map[string]bool `json:"artifacts_status"`
	ProblemStatus   ProblemStatus   `json:"problem_status"`
}

// SaveTree writes the full on-disk layout for a run rooted at baseDir:
// the node tree (recursively), research_metadata.json, _knowledge_base.md,
// and _ExternalFiles/.
func SaveTree(baseDir string, root *Node, kb *KnowledgeBase, ext *ExternalFiles, createdAt time.Time) error {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return fmt.Errorf("research: creating research root %s: %w", baseDir, err)
	}

	if err := saveNode(baseDir, root); err != nil {
		return err
	}

	meta := Metadata{CreatedAt: createdAt, LastUpdated: time.Now(), RootNodeTitle: root.Title}
	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("research: marshaling research_metadata.json: %w", err)
	}
	if err := os.WriteFile(filepath.Join(baseDir, "research_metadata.json"), metaBytes, 0o644); err != nil {
		return fmt.Errorf("research: writing research_metadata.json: %w", err)
	}

	if err := saveKnowledgeBase(baseDir, kb); err != nil {
		return err
	}
	if err := saveExternalFiles(baseDir, ext); err != nil {
		return err
	}

	return nil
}

func saveNode(dir string, n *Node) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("research: creating node directory %s: %w", dir, err)
	}

	defDoc, err := renderFrontmatter(map[string]any{"status": string(n.State.ProblemStatus), "title": n.Title}, n.ProblemDefinition)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "Problem Definition.md"), []byte(defDoc), 0o644); err != nil {
		return fmt.Errorf("research: writing Problem Definition.md: %w", err)
	}

	if len(n.Artifacts) > 0 {
		artifactsDir := filepath.Join(dir, "Artifacts")
		if err := os.MkdirAll(artifactsDir, 0o755); err != nil {
			return fmt.Errorf("research: creating Artifacts dir: %w", err)
		}
		for _, a := range n.Artifacts {
			if err := saveArtifact(artifactsDir, a); err != nil {
				return err
			}
		}
	}

	stateDoc := nodeStateDoc{ArtifactsStatus: n.State.ArtifactsOpen, ProblemStatus: n.State.ProblemStatus}
	stateBytes, err := json.MarshalIndent(stateDoc, "", "  ")
	if err != nil {
		return fmt.Errorf("research: marshaling node_state.json: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "node_state.json"), stateBytes, 0o644); err != nil {
		return fmt.Errorf("research: writing node_state.json: %w", err)
	}

	historyBytes, err := n.History.Marshal()
	if err != nil {
		return fmt.Errorf("research: marshaling history.json: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "history.json"), historyBytes, 0o644); err != nil {
		return fmt.Errorf("research: writing history.json: %w", err)
	}

	for _, child := range n.Children {
		if err := saveNode(filepath.Join(dir, filepath.Base(child.Path)), child); err != nil {
			return err
		}
	}
	return nil
}

func saveArtifact(artifactsDir string, a *Artifact) error {
	props := map[string]any{"name": a.Name, "summary": a.Summary}
	if a.IsExternal {
		props["is_external"] = true
	}
	doc, err := renderFrontmatter(props, a.Content)
	if err != nil {
		return err
	}
	name := SanitizeTitle(a.Name) + ".md"
	if err := os.WriteFile(filepath.Join(artifactsDir, name), []byte(doc), 0o644); err != nil {
		return fmt.Errorf("research: writing artifact %s: %w", a.Name, err)
	}
	return nil
}

func saveKnowledgeBase(baseDir string, kb *KnowledgeBase) error {
	if kb == nil || len(kb.Entries) == 0 {
		return nil
	}
	var b strings.Builder
	for i, e := range kb.Entries {
		if i > 0 {
			b.WriteString("\n" + knowledgeEntrySeparator + "\n\n")
		}
		props := map[string]any{
			"title":      e.Title,
			"timestamp":  e.Timestamp.Format(time.RFC3339),
			"tags":       e.Tags,
			"source":     e.Source,
			"importance": e.Importance,
			"confidence": e.Confidence,
		}
		doc, err := renderFrontmatter(props, e.Content)
		if err != nil {
			return err
		}
		b.WriteString(doc)
	}
	if err := os.WriteFile(filepath.Join(baseDir, "_knowledge_base.md"), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("research: writing _knowledge_base.md: %w", err)
	}
	return nil
}

func saveExternalFiles(baseDir string, ext *ExternalFiles) error {
	if ext == nil || len(ext.Items) == 0 {
		return nil
	}
	dir := filepath.Join(baseDir, "_ExternalFiles")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("research: creating _ExternalFiles dir: %w", err)
	}
	for _, a := range ext.Items {
		if err := saveArtifact(dir, a); err != nil {
			return err
		}
	}
	return nil
}

// renderFrontmatter serializes props as a YAML frontmatter block
// followed by body, the format every markdown file in the persistence
// layout shares.
func renderFrontmatter(props map[string]any, body string) (string, error) {
	yamlBytes, err := yaml.Marshal(props)
	if err != nil {
		return "", fmt.Errorf("research: marshaling frontmatter: %w", err)
	}
	var b strings.Builder
	b.WriteString("---\n")
	b.Write(yamlBytes)
	b.WriteString("---\n\n")
	b.WriteString(body)
	return b.String(), nil
}

// parseFrontmatter splits a "---\nyaml\n---\nbody" document into its
// frontmatter properties and body text. A document with no leading
// frontmatter block is returned as an empty property map and the whole
// input as body.
func parseFrontmatter(data []byte) (map[string]any, string, error) {
	text := string(data)
	if !strings.HasPrefix(text, "---\n") {
		return map[string]any{}, text, nil
	}
	rest := text[len("---\n"):]
	idx := strings.Index(rest, "\n---\n")
	if idx == -1 {
		return map[string]any{}, text, nil
	}
	yamlPart := rest[:idx]
	body := strings.TrimPrefix(rest[idx+len("\n---\n"):], "\n")

	var props map[string]any
	if err := yaml.Unmarshal([]byte(yamlPart), &props); err != nil {
		return nil, "", fmt.Errorf("research: parsing frontmatter: %w", err)
	}
	if props == nil {
		props = map[string]any{}
	}
	return props, body, nil
}

// LoadTree reconstructs a tree and its run-level stores from baseDir, the
// inverse of SaveTree.
func LoadTree(baseDir string) (*Node, *KnowledgeBase, *ExternalFiles, Metadata, error) {
	var meta Metadata
	metaBytes, err := os.ReadFile(filepath.Join(baseDir, "research_metadata.json"))
	if err != nil {
		return nil, nil, nil, meta, fmt.Errorf("research: reading research_metadata.json: %w", err)
	}
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, nil, nil, meta, fmt.Errorf("research: parsing research_metadata.json: %w", err)
	}

	root, err := loadNode(baseDir, nil, "")
	if err != nil {
		return nil, nil, nil, meta, err
	}
	root.Title = meta.RootNodeTitle

	kb, err := loadKnowledgeBase(baseDir)
	if err != nil {
		return nil, nil, nil, meta, err
	}

	ext, err := loadExternalFiles(baseDir)
	if err != nil {
		return nil, nil, nil, meta, err
	}

	return root, kb, ext, meta, nil
}

func loadNode(dir string, parent *Node, path string) (*Node, error) {
	defBytes, err := os.ReadFile(filepath.Join(dir, "Problem Definition.md"))
	if err != nil {
		return nil, fmt.Errorf("research: reading Problem Definition.md: %w", err)
	}
	props, body, err := parseFrontmatter(defBytes)
	if err != nil {
		return nil, err
	}

	title := filepath.Base(dir)
	if parent == nil {
		title = ""
	}
	if saved, ok := props["title"].(string); ok && parent != nil {
		title = saved
	}

	n := &Node{
		Title:             title,
		ProblemDefinition: body,
		Parent:            parent,
		Path:              path,
		State:             newNodeState(),
	}
	if status, ok := props["status"].(string); ok {
		n.State.ProblemStatus = ProblemStatus(status)
	}

	stateBytes, err := os.ReadFile(filepath.Join(dir, "node_state.json"))
	if err != nil {
		return nil, fmt.Errorf("research: reading node_state.json: %w", err)
	}
	var stateDoc nodeStateDoc
	if err := json.Unmarshal(stateBytes, &stateDoc); err != nil {
		return nil, fmt.Errorf("research: parsing node_state.json: %w", err)
	}
	n.State.ProblemStatus = stateDoc.ProblemStatus
	if stateDoc.ArtifactsStatus != nil {
		n.State.ArtifactsOpen = stateDoc.ArtifactsStatus
	}

	historyBytes, err := os.ReadFile(filepath.Join(dir, "history.json"))
	if err != nil {
		return nil, fmt.Errorf("research: reading history.json: %w", err)
	}
	store, err := history.Unmarshal(historyBytes)
	if err != nil {
		return nil, fmt.Errorf("research: parsing history.json: %w", err)
	}
	n.History = store

	artifacts, err := loadArtifacts(filepath.Join(dir, "Artifacts"), n)
	if err != nil {
		return nil, err
	}
	n.Artifacts = artifacts

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("research: reading node directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == "Artifacts" || entry.Name() == "logs_and_debug" {
			continue
		}
		childPath := filepath.Join(path, entry.Name())
		child, err := loadNode(filepath.Join(dir, entry.Name()), n, childPath)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}

	return n, nil
}

func loadArtifacts(dir string, owner *Node) ([]*Artifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("research: reading Artifacts dir: %w", err)
	}
	var artifacts []*Artifact
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		a, err := loadArtifact(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if owner != nil {
			a.owner = owner
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, nil
}

func loadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("research: reading artifact %s: %w", path, err)
	}
	props, body, err := parseFrontmatter(data)
	if err != nil {
		return nil, err
	}
	a := &Artifact{Content: body}
	if name, ok := props["name"].(string); ok {
		a.Name = name
	}
	if summary, ok := props["summary"].(string); ok {
		a.Summary = summary
	}
	if external, ok := props["is_external"].(bool); ok {
		a.IsExternal = external
	}
	return a, nil
}

func loadKnowledgeBase(baseDir string) (*KnowledgeBase, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, "_knowledge_base.md"))
	if err != nil {
		if os.IsNotExist(err) {
			return NewKnowledgeBase(), nil
		}
		return nil, fmt.Errorf("research: reading _knowledge_base.md: %w", err)
	}
	kb := NewKnowledgeBase()
	for _, chunk := range bytes.Split(data, []byte(knowledgeEntrySeparator)) {
		chunk = bytes.TrimSpace(chunk)
		if len(chunk) == 0 {
			continue
		}
		props, body, err := parseFrontmatter(chunk)
		if err != nil {
			return nil, err
		}
		entry := &KnowledgeEntry{Content: strings.TrimSpace(body)}
		if title, ok := props["title"].(string); ok {
			entry.Title = title
		}
		if source, ok := props["source"].(string); ok {
			entry.Source = source
		}
		if ts, ok := props["timestamp"].(string); ok {
			if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
				entry.Timestamp = parsed
			}
		}
		if importance, ok := props["importance"].(float64); ok {
			entry.Importance = importance
		}
		if confidence, ok := props["confidence"].(float64); ok {
			entry.Confidence = confidence
		}
		if rawTags, ok := props["tags"].([]any); ok {
			for _, t := range rawTags {
				if s, ok := t.(string); ok {
					entry.Tags = append(entry.Tags, s)
				}
			}
		}
		kb.Entries = append(kb.Entries, entry)
	}
	return kb, nil
}

func loadExternalFiles(baseDir string) (*ExternalFiles, error) {
	artifacts, err := loadArtifacts(filepath.Join(baseDir, "_ExternalFiles"), nil)
	if err != nil {
		return nil, err
	}
	ext := NewExternalFiles()
	ext.Items = artifacts
	return ext, nil
}
