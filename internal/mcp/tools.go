package mcp

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ganot/swarmdo/internal/domain/project"
	"github.com/ganot/swarmdo/internal/domain/swarm"
)

func registerTools(server *sdkmcp.Server, svc Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_project",
		Description: "Create a new private project and select it",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params CreateProjectParams) (*sdkmcp.CallToolResult, ProjectResponse, error) {
		proj, err := svc.Engine.AddProject(ctx, params.Name)
		if err != nil {
			return nil, ProjectResponse{}, err
		}
		return nil, toProjectResponse(*proj), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List own and shared projects and the current selection",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params ListProjectsParams) (*sdkmcp.CallToolResult, ListProjectsResponse, error) {
		resp := ListProjectsResponse{
			Projects:       toProjectResponses(svc.Engine.Projects()),
			SharedProjects: toProjectResponses(svc.Engine.SharedProjects()),
		}
		if current, ok := svc.Engine.CurrentProject(); ok {
			resp.CurrentProjectID = current.ID
		}
		return nil, resp, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "select_project",
		Description: "Select the current project by id",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params SelectProjectParams) (*sdkmcp.CallToolResult, EmptyResult, error) {
		if err := svc.Engine.SetCurrentProject(params.ID); err != nil {
			return nil, EmptyResult{}, err
		}
		return nil, EmptyResult{OK: true}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "remove_project",
		Description: "Remove a project and its tasks",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params RemoveProjectParams) (*sdkmcp.CallToolResult, EmptyResult, error) {
		if err := svc.Engine.RemoveProject(ctx, params.ID); err != nil {
			return nil, EmptyResult{}, err
		}
		return nil, EmptyResult{OK: true}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_task",
		Description: "Add a task to a project (replicated to peers when the project is shared)",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params AddTaskParams) (*sdkmcp.CallToolResult, TaskResponse, error) {
		projectID := params.ProjectID
		if projectID == "" {
			current, ok := svc.Engine.CurrentProject()
			if !ok {
				return nil, TaskResponse{}, fmt.Errorf("no project selected")
			}
			projectID = current.ID
		}
		task, err := svc.Engine.AddTask(ctx, project.AddTaskRequest{ProjectID: projectID, Text: params.Text})
		if err != nil {
			return nil, TaskResponse{}, err
		}
		return nil, toTaskResponse(*task), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "edit_task",
		Description: "Replace a task's text",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params EditTaskParams) (*sdkmcp.CallToolResult, TaskResponse, error) {
		task, err := svc.Engine.EditTask(ctx, params.ID, params.Text)
		if err != nil {
			return nil, TaskResponse{}, err
		}
		return nil, toTaskResponse(*task), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "toggle_task",
		Description: "Toggle a task's completed flag",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params ToggleTaskParams) (*sdkmcp.CallToolResult, TaskResponse, error) {
		task, err := svc.Engine.ToggleTask(ctx, params.ID)
		if err != nil {
			return nil, TaskResponse{}, err
		}
		return nil, toTaskResponse(*task), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "remove_task",
		Description: "Delete a task",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params RemoveTaskParams) (*sdkmcp.CallToolResult, EmptyResult, error) {
		if err := svc.Engine.RemoveTask(ctx, params.ID); err != nil {
			return nil, EmptyResult{}, err
		}
		return nil, EmptyResult{OK: true}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_tasks",
		Description: "List the tasks of a project",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params ListTasksParams) (*sdkmcp.CallToolResult, ListTasksResponse, error) {
		tasks := svc.Engine.Tasks()
		if params.ProjectID != "" {
			tasks = svc.Engine.TasksFor(params.ProjectID)
		}
		return nil, ListTasksResponse{Tasks: toTaskResponses(tasks)}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "share_project",
		Description: "Host a live session for an own project: generates a topic, marks the project, joins the topic",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params ShareProjectParams) (*sdkmcp.CallToolResult, ShareProjectResponse, error) {
		topic := swarm.NewTopic()
		if err := svc.Engine.SetProjectTopic(ctx, params.ProjectID, topic); err != nil {
			return nil, ShareProjectResponse{}, err
		}
		if err := svc.Session.Join(ctx, topic); err != nil {
			return nil, ShareProjectResponse{}, err
		}
		return nil, ShareProjectResponse{Topic: topic}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "join_session",
		Description: "Join an existing session by topic id",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params JoinSessionParams) (*sdkmcp.CallToolResult, SessionStatusResponse, error) {
		if err := svc.Session.Join(ctx, params.Topic); err != nil {
			return nil, SessionStatusResponse{}, err
		}
		return nil, sessionStatus(svc.Session), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "receive_shared_project",
		Description: "Register a shared project snapshot received from the session host",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params ReceiveSharedProjectParams) (*sdkmcp.CallToolResult, EmptyResult, error) {
		proj := project.Project{ID: params.Project.ID, Name: params.Project.Name, Topic: params.Project.Topic}
		tasks := make([]project.Task, 0, len(params.Tasks))
		for _, task := range params.Tasks {
			tasks = append(tasks, project.Task{
				ID:        task.ID,
				Text:      task.Text,
				Completed: task.Completed,
				ProjectID: task.ProjectID,
			})
		}
		if err := svc.Engine.AddSharedProject(proj, tasks); err != nil {
			return nil, EmptyResult{}, err
		}
		if err := svc.Engine.SetCurrentProject(proj.ID); err != nil {
			return nil, EmptyResult{}, err
		}
		return nil, EmptyResult{OK: true}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "session_status",
		Description: "Report session state, topic and peer count",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params SessionStatusParams) (*sdkmcp.CallToolResult, SessionStatusResponse, error) {
		return nil, sessionStatus(svc.Session), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "send_message",
		Description: "Send a chat message to all connected peers",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params SendMessageParams) (*sdkmcp.CallToolResult, EmptyResult, error) {
		if err := svc.Chat.Send(params.Text); err != nil {
			return nil, EmptyResult{}, err
		}
		return nil, EmptyResult{OK: true}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_messages",
		Description: "List the chat log of the active session",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, params ListMessagesParams) (*sdkmcp.CallToolResult, ListMessagesResponse, error) {
		messages := svc.Chat.Messages()
		resp := ListMessagesResponse{Messages: make([]MessageResponse, 0, len(messages))}
		for _, msg := range messages {
			resp.Messages = append(resp.Messages, MessageResponse{From: msg.From, Text: msg.Text})
		}
		return nil, resp, nil
	})
}

func sessionStatus(session *swarm.Session) SessionStatusResponse {
	peers := session.Peers()
	resp := SessionStatusResponse{
		State:     string(session.State()),
		Topic:     session.Topic(),
		PeerCount: len(peers),
	}
	for _, peer := range peers {
		resp.Peers = append(resp.Peers, peer.ShortKey())
	}
	return resp
}
