package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"klaso-client/internal/model"
)

// ListPath builds the collection path for a scope.
type ListPath func(scope model.Scope) string

// Resource is the CRUD collaborator for one entity type.
type Resource[T any] struct {
	client   *Client
	base     string
	listPath ListPath
}

func NewResource[T any](client *Client, base string, listPath ListPath) *Resource[T] {
	if listPath == nil {
		listPath = func(model.Scope) string { return base }
	}
	return &Resource[T]{
		client:   client,
		base:     base,
		listPath: listPath,
	}
}

// ByParent lists under base/segment/{parentID}, with an optional date filter.
func ByParent(base, segment string) ListPath {
	return func(scope model.Scope) string {
		path := fmt.Sprintf("%s/%s/%s", base, segment, url.PathEscape(scope.ParentID.String()))
		if scope.Date != nil {
			path += "?" + url.Values{"date": []string{scope.Date.String()}}.Encode()
		}
		return path
	}
}

func (r *Resource[T]) List(ctx context.Context, scope model.Scope) ([]T, error) {
	var items []T
	if err := r.client.Do(ctx, http.MethodGet, r.listPath(scope), nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (r *Resource[T]) Get(ctx context.Context, id model.ID) (T, error) {
	var item T
	err := r.client.Do(ctx, http.MethodGet, r.itemPath(id), nil, &item)
	return item, err
}

func (r *Resource[T]) Create(ctx context.Context, payload interface{}) (T, error) {
	var item T
	err := r.client.Do(ctx, http.MethodPost, r.base, payload, &item)
	return item, err
}

func (r *Resource[T]) Update(ctx context.Context, id model.ID, payload interface{}) (T, error) {
	var item T
	err := r.client.Do(ctx, http.MethodPut, r.itemPath(id), payload, &item)
	return item, err
}

func (r *Resource[T]) Delete(ctx context.Context, id model.ID) error {
	return r.client.Do(ctx, http.MethodDelete, r.itemPath(id), nil, nil)
}

func (r *Resource[T]) itemPath(id model.ID) string {
	return r.base + "/" + url.PathEscape(id.String())
}

// Resources bundles the collaborators of every entity type.
type Resources struct {
	Establishments *Resource[model.Establishment]
	Classrooms     *Resource[model.Classroom]
	Students       *Resource[model.Student]
	Grades         *GradeResource
	Attendances    *Resource[model.Attendance]
	Evaluations    *EvaluationResource
}

func NewResources(client *Client) *Resources {
	return &Resources{
		Establishments: NewResource[model.Establishment](client, "/establishments", nil),
		Classrooms:     NewResource[model.Classroom](client, "/classrooms", ByParent("/classrooms", "establishment")),
		Students:       NewResource[model.Student](client, "/students", ByParent("/students", "classroom")),
		Grades:         NewGradeResource(client),
		Attendances:    NewResource[model.Attendance](client, "/attendances", ByParent("/attendances", "classroom")),
		Evaluations:    NewEvaluationResource(client),
	}
}

// GradeResource adds the per-student listing to the grade collaborator.
type GradeResource struct {
	*Resource[model.Grade]
	client *Client
}

func NewGradeResource(client *Client) *GradeResource {
	return &GradeResource{
		Resource: NewResource[model.Grade](client, "/grades", ByParent("/grades", "classroom")),
		client:   client,
	}
}

// ListByStudent lists every grade of one student, across classrooms.
func (r *GradeResource) ListByStudent(ctx context.Context, studentID model.ID) ([]model.Grade, error) {
	grades := []model.Grade{}
	path := "/grades/student/" + url.PathEscape(studentID.String())
	if err := r.client.Do(ctx, http.MethodGet, path, nil, &grades); err != nil {
		return nil, err
	}
	return grades, nil
}

// EvaluationResource adds bulk grading to the evaluation collaborator.
type EvaluationResource struct {
	*Resource[model.Evaluation]
	client *Client
}

func NewEvaluationResource(client *Client) *EvaluationResource {
	return &EvaluationResource{
		Resource: NewResource[model.Evaluation](client, "/evaluations", ByParent("/evaluations", "classroom")),
		client:   client,
	}
}

func (r *EvaluationResource) SaveGrades(ctx context.Context, evaluationID model.ID, req model.EvaluationGradesRequest) ([]model.Grade, error) {
	var grades []model.Grade
	path := "/evaluations/" + url.PathEscape(evaluationID.String()) + "/grades"
	if err := r.client.Do(ctx, http.MethodPost, path, req, &grades); err != nil {
		return nil, err
	}
	return grades, nil
}

func (r *EvaluationResource) Grades(ctx context.Context, evaluationID model.ID) ([]model.Grade, error) {
	var grades []model.Grade
	path := "/evaluations/" + url.PathEscape(evaluationID.String()) + "/grades"
	if err := r.client.Do(ctx, http.MethodGet, path, nil, &grades); err != nil {
		return nil, err
	}
	return grades, nil
}
