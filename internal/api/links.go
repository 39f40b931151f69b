package api

import (
	"fmt"
	"net/http"
	"net/url"
)

// tasksBasePath is the canonical mount point of the task resource.
const tasksBasePath = "/api/v1/tasks"

// TaskLinks is the hyperlink block embedded in task responses.
type TaskLinks struct {
	Self     string `json:"self"`
	Comments string `json:"comments"`
}

// CommentLinks is the hyperlink block embedded in comment responses.
type CommentLinks struct {
	Self string `json:"self"`
	Task string `json:"task"`
}

// ListLinks is the hyperlink block embedded in list responses.
// Prev is omitted on the first page. Next is always present: computing the
// true last page would require a full store scan, so it is not capped.
type ListLinks struct {
	Self string `json:"self"`
	Next string `json:"next,omitempty"`
	Prev string `json:"prev,omitempty"`
}

// ListMetadata carries pagination details for list responses.
type ListMetadata struct {
	Total int `json:"total"`
	Page  int `json:"page,omitempty"`
	Limit int `json:"limit,omitempty"`
}

// baseURL reconstructs the scheme and host of the request's own URL, so that
// links point back at whatever address the client reached us on.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// taskLinks computes the links block for a single task.
func taskLinks(r *http.Request, taskID string) TaskLinks {
	self := baseURL(r) + tasksBasePath + "/" + url.PathEscape(taskID)
	return TaskLinks{
		Self:     self,
		Comments: self + "/comments",
	}
}

// commentLinks computes the links block for a single comment. The task link
// is the comment collection URL with the "/comments" suffix stripped.
func commentLinks(r *http.Request, taskID, commentID string) CommentLinks {
	task := baseURL(r) + tasksBasePath + "/" + url.PathEscape(taskID)
	return CommentLinks{
		Self: task + "/comments/" + url.PathEscape(commentID),
		Task: task,
	}
}

// taskListLinks computes the self/next/prev links for the task collection,
// preserving any active filters in the query string.
func taskListLinks(r *http.Request, page, limit int, filters url.Values) ListLinks {
	pageURL := func(p int) string {
		q := url.Values{}
		q.Set("page", fmt.Sprintf("%d", p))
		q.Set("limit", fmt.Sprintf("%d", limit))
		for key, values := range filters {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		return baseURL(r) + tasksBasePath + "?" + q.Encode()
	}

	links := ListLinks{
		Self: pageURL(page),
		Next: pageURL(page + 1),
	}
	if page > 1 {
		links.Prev = pageURL(page - 1)
	}
	return links
}

// commentListLinks computes the links block for a task's comment collection.
func commentListLinks(r *http.Request, taskID string) ListLinks {
	return ListLinks{
		Self: baseURL(r) + tasksBasePath + "/" + url.PathEscape(taskID) + "/comments",
	}
}
