package mcp

import "github.com/ganot/swarmdo/internal/domain/project"

type CreateProjectParams struct {
	Name string `json:"name" jsonschema:"Project display name"`
}

type ProjectResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Topic *string `json:"topic,omitempty"`
}

type ListProjectsParams struct{}

type ListProjectsResponse struct {
	Projects         []ProjectResponse `json:"projects"`
	SharedProjects   []ProjectResponse `json:"shared_projects"`
	CurrentProjectID string            `json:"current_project_id,omitempty"`
}

type SelectProjectParams struct {
	ID string `json:"id" jsonschema:"Project ID to select (empty clears the selection)"`
}

type RemoveProjectParams struct {
	ID string `json:"id" jsonschema:"Project ID to remove"`
}

type AddTaskParams struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"Project ID (omit to use the current project)"`
	Text      string `json:"text" jsonschema:"Task text"`
}

type TaskResponse struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	ProjectID string `json:"project_id"`
}

type EditTaskParams struct {
	ID   string `json:"id" jsonschema:"Task ID"`
	Text string `json:"text" jsonschema:"Replacement text"`
}

type ToggleTaskParams struct {
	ID string `json:"id" jsonschema:"Task ID"`
}

type RemoveTaskParams struct {
	ID string `json:"id" jsonschema:"Task ID"`
}

type ListTasksParams struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"Project ID (omit to use the current project)"`
}

type ListTasksResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

type ShareProjectParams struct {
	ProjectID string `json:"project_id" jsonschema:"Own project ID to host a session for"`
}

type ShareProjectResponse struct {
	Topic string `json:"topic"`
}

type JoinSessionParams struct {
	Topic string `json:"topic" jsonschema:"64-character hex topic id"`
}

type ReceiveSharedProjectParams struct {
	Project ProjectResponse `json:"project" jsonschema:"Shared project snapshot from the host"`
	Tasks   []TaskResponse  `json:"tasks,omitempty" jsonschema:"Task snapshot from the host"`
}

type SessionStatusParams struct{}

type SessionStatusResponse struct {
	State     string   `json:"state"`
	Topic     string   `json:"topic,omitempty"`
	PeerCount int      `json:"peer_count"`
	Peers     []string `json:"peers,omitempty"`
}

type SendMessageParams struct {
	Text string `json:"text" jsonschema:"Message text"`
}

type ListMessagesParams struct{}

type MessageResponse struct {
	From string `json:"from"`
	Text string `json:"text"`
}

type ListMessagesResponse struct {
	Messages []MessageResponse `json:"messages"`
}

type EmptyResult struct {
	OK bool `json:"ok"`
}

func toProjectResponse(proj project.Project) ProjectResponse {
	return ProjectResponse{ID: proj.ID, Name: proj.Name, Topic: proj.Topic}
}

func toProjectResponses(projects []project.Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(projects))
	for _, proj := range projects {
		out = append(out, toProjectResponse(proj))
	}
	return out
}

func toTaskResponse(task project.Task) TaskResponse {
	return TaskResponse{
		ID:        task.ID,
		Text:      task.Text,
		Completed: task.Completed,
		ProjectID: task.ProjectID,
	}
}

func toTaskResponses(tasks []project.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, toTaskResponse(task))
	}
	return out
}
