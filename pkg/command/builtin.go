package command

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RegisterBuiltins registers the reference command set this engine ships
// with. Production deployments may register additional or replacement
// commands; the grammar and set of commands are pluggable per spec §1.
func RegisterBuiltins(reg *Registry) error {
	defs := []*Definition{
		{Name: "define_problem", Handler: defineProblem},
		{Name: "append_definition", Handler: appendDefinition},
		{Name: "add_subproblem", Handler: addSubproblem},
		{Name: "queue_child", Handler: queueChild},
		{Name: "focus_down", Handler: focusDown},
		{Name: "add_artifact", Handler: addArtifact},
		{Name: "update_artifact", Handler: updateArtifact},
		{Name: "close_artifact", Handler: closeArtifact},
		{Name: "add_criterion", Handler: addCriterion},
		{Name: "complete_criterion", Handler: completeCriterion},
		{Name: "add_knowledge_entry", Handler: addKnowledgeEntry},
		{Name: "finish_problem", MustBeLast: true, Handler: finishProblem},
		{Name: "fail_problem", MustBeLast: true, Handler: failProblem},
	}
	for _, d := range defs {
		if err := reg.Register(d); err != nil {
			return err
		}
	}
	return nil
}

func defineProblem(ctx *Context, args map[string]string) (string, error) {
	title := args["title"]
	content := args["content"]
	if title == "" || content == "" {
		return "", fmt.Errorf("define_problem requires 'title' and 'content'")
	}
	ctx.Root.Title = title
	ctx.Root.ProblemDefinition = content
	return fmt.Sprintf("Problem defined: %s", title), nil
}

func appendDefinition(ctx *Context, args map[string]string) (string, error) {
	update := args["content"]
	if update == "" {
		return "", fmt.Errorf("append_definition requires 'content'")
	}
	ctx.ActiveNode.AppendToDefinition(update)
	return "Problem definition updated.", nil
}

func addSubproblem(ctx *Context, args map[string]string) (string, error) {
	title := args["title"]
	content := args["content"]
	if title == "" || content == "" {
		return "", fmt.Errorf("add_subproblem requires 'title' and 'content'")
	}
	if _, err := ctx.ActiveNode.AddChild(title, content); err != nil {
		return "", err
	}
	return fmt.Sprintf("Subproblem created: %s", title), nil
}

func queueChild(ctx *Context, args map[string]string) (string, error) {
	title := args["title"]
	if title == "" {
		return "", fmt.Errorf("queue_child requires 'title'")
	}
	if _, err := ctx.ActiveNode.Child(title); err != nil {
		return "", err
	}
	ctx.Scheduler.Queue.Enqueue(ctx.ActiveNode, title)
	return fmt.Sprintf("Queued child for sequential activation: %s", title), nil
}

func focusDown(ctx *Context, args map[string]string) (string, error) {
	title := args["title"]
	if title == "" {
		return "", fmt.Errorf("focus_down requires 'title'")
	}
	if err := ctx.Scheduler.FocusDown(ctx.ActiveNode, title); err != nil {
		return "", err
	}
	return fmt.Sprintf("Focus moved to: %s", title), nil
}

func addArtifact(ctx *Context, args map[string]string) (string, error) {
	name := args["name"]
	if name == "" {
		return "", fmt.Errorf("add_artifact requires 'name'")
	}
	external := strings.EqualFold(args["external"], "true")
	if _, err := ctx.ActiveNode.AddArtifact(name, args["summary"], args["content"], external); err != nil {
		return "", err
	}
	return fmt.Sprintf("Artifact created: %s", name), nil
}

func updateArtifact(ctx *Context, args map[string]string) (string, error) {
	name := args["name"]
	if name == "" {
		return "", fmt.Errorf("update_artifact requires 'name'")
	}
	if err := ctx.ActiveNode.UpdateArtifact(name, args["summary"], args["content"]); err != nil {
		return "", err
	}
	return fmt.Sprintf("Artifact updated: %s", name), nil
}

func closeArtifact(ctx *Context, args map[string]string) (string, error) {
	name := args["name"]
	if name == "" {
		return "", fmt.Errorf("close_artifact requires 'name'")
	}
	if err := ctx.ActiveNode.CloseArtifact(name); err != nil {
		return "", err
	}
	return fmt.Sprintf("Artifact closed: %s", name), nil
}

func addCriterion(ctx *Context, args map[string]string) (string, error) {
	text := args["text"]
	if text == "" {
		return "", fmt.Errorf("add_criterion requires 'text'")
	}
	ctx.ActiveNode.AddCriterion(text)
	return "Criterion added.", nil
}

func completeCriterion(ctx *Context, args map[string]string) (string, error) {
	text := args["text"]
	if text == "" {
		return "", fmt.Errorf("complete_criterion requires 'text'")
	}
	if err := ctx.ActiveNode.MarkCriterionComplete(text); err != nil {
		return "", err
	}
	return "Criterion marked complete.", nil
}

func addKnowledgeEntry(ctx *Context, args map[string]string) (string, error) {
	title := args["title"]
	if title == "" {
		return "", fmt.Errorf("add_knowledge_entry requires 'title'")
	}
	var tags []string
	if raw := args["tags"]; raw != "" {
		for _, t := range strings.Split(raw, ",") {
			tags = append(tags, strings.TrimSpace(t))
		}
	}
	importance, _ := strconv.ParseFloat(args["importance"], 64)
	confidence, _ := strconv.ParseFloat(args["confidence"], 64)
	ctx.KnowledgeBase.AddEntry(title, args["source"], tags, importance, confidence, args["content"], time.Now())
	return fmt.Sprintf("Knowledge entry added: %s", title), nil
}

func finishProblem(ctx *Context, args map[string]string) (string, error) {
	if err := ctx.Scheduler.FocusUp(ctx.ActiveNode, args["message"]); err != nil {
		return "", err
	}
	return "Problem finished.", nil
}

func failProblem(ctx *Context, args map[string]string) (string, error) {
	if err := ctx.Scheduler.FailAndFocusUp(ctx.ActiveNode, args["message"]); err != nil {
		return "", err
	}
	return "Problem failed.", nil
}
