package handler

import (
	"context"

	"github.com/AnnaNajafiH/SabaStudio/internal/model"
	"github.com/AnnaNajafiH/SabaStudio/internal/service"
)

// ---------------------------------------------------------------------------
// ProjectService のモック
// ---------------------------------------------------------------------------

type mockProjectService struct {
	listFunc            func(ctx context.Context, params service.ProjectListParams) (*model.Page[*model.Project], error)
	getFunc             func(ctx context.Context, idOrSlug string, includeUnpublished bool) (*model.Project, error)
	featuredFunc        func(ctx context.Context, limit int) ([]*model.Project, error)
	categoriesFunc      func(ctx context.Context) ([]model.CategoryCount, error)
	listByCategoryFunc  func(ctx context.Context, category string, page, limit int) (*model.Page[*model.Project], error)
	createFunc          func(ctx context.Context, in service.ProjectInput) (*model.Project, error)
	updateFunc          func(ctx context.Context, id string, in service.ProjectInput) (*model.Project, error)
	deleteFunc          func(ctx context.Context, id string) error
	toggleFeaturedFunc  func(ctx context.Context, id string) (*model.Project, error)
	togglePublishedFunc func(ctx context.Context, id string) (*model.Project, error)
	addImageFunc        func(ctx context.Context, id string, img service.ImageUpload) (*model.Project, error)
}

func (m *mockProjectService) List(ctx context.Context, params service.ProjectListParams) (*model.Page[*model.Project], error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, params)
	}
	return model.NewPage[*model.Project](nil, 0, 1, service.DefaultProjectLimit), nil
}

func (m *mockProjectService) Get(ctx context.Context, idOrSlug string, includeUnpublished bool) (*model.Project, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, idOrSlug, includeUnpublished)
	}
	return nil, service.ErrNotFound
}

func (m *mockProjectService) Featured(ctx context.Context, limit int) ([]*model.Project, error) {
	if m.featuredFunc != nil {
		return m.featuredFunc(ctx, limit)
	}
	return []*model.Project{}, nil
}

func (m *mockProjectService) Categories(ctx context.Context) ([]model.CategoryCount, error) {
	if m.categoriesFunc != nil {
		return m.categoriesFunc(ctx)
	}
	return []model.CategoryCount{}, nil
}

func (m *mockProjectService) ListByCategory(ctx context.Context, category string, page, limit int) (*model.Page[*model.Project], error) {
	if m.listByCategoryFunc != nil {
		return m.listByCategoryFunc(ctx, category, page, limit)
	}
	return model.NewPage[*model.Project](nil, 0, 1, service.DefaultProjectLimit), nil
}

func (m *mockProjectService) Create(ctx context.Context, in service.ProjectInput) (*model.Project, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, in)
	}
	return &model.Project{ID: "new-id"}, nil
}

func (m *mockProjectService) Update(ctx context.Context, id string, in service.ProjectInput) (*model.Project, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, in)
	}
	return &model.Project{ID: id}, nil
}

func (m *mockProjectService) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockProjectService) ToggleFeatured(ctx context.Context, id string) (*model.Project, error) {
	if m.toggleFeaturedFunc != nil {
		return m.toggleFeaturedFunc(ctx, id)
	}
	return &model.Project{ID: id, Featured: true}, nil
}

func (m *mockProjectService) TogglePublished(ctx context.Context, id string) (*model.Project, error) {
	if m.togglePublishedFunc != nil {
		return m.togglePublishedFunc(ctx, id)
	}
	return &model.Project{ID: id, Published: true}, nil
}

func (m *mockProjectService) AddImage(ctx context.Context, id string, img service.ImageUpload) (*model.Project, error) {
	if m.addImageFunc != nil {
		return m.addImageFunc(ctx, id, img)
	}
	return &model.Project{ID: id}, nil
}

// ---------------------------------------------------------------------------
// ContactService のモック
// ---------------------------------------------------------------------------

type mockContactService struct {
	submitFunc    func(ctx context.Context, in service.ContactInput, client service.ClientContext) (*model.ContactReceipt, error)
	listFunc      func(ctx context.Context, params service.ContactListParams) (*model.Page[*model.ContactMessage], error)
	getFunc       func(ctx context.Context, id string) (*model.ContactMessage, error)
	setStatusFunc func(ctx context.Context, id, status string) (*model.ContactMessage, error)
	deleteFunc    func(ctx context.Context, id string) error
	testEmailFunc func(ctx context.Context, to string) error
}

func (m *mockContactService) Submit(ctx context.Context, in service.ContactInput, client service.ClientContext) (*model.ContactReceipt, error) {
	if m.submitFunc != nil {
		return m.submitFunc(ctx, in, client)
	}
	return &model.ContactReceipt{ID: "msg-1"}, nil
}

func (m *mockContactService) List(ctx context.Context, params service.ContactListParams) (*model.Page[*model.ContactMessage], error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, params)
	}
	return model.NewPage[*model.ContactMessage](nil, 0, 1, service.DefaultContactLimit), nil
}

func (m *mockContactService) Get(ctx context.Context, id string) (*model.ContactMessage, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, service.ErrNotFound
}

func (m *mockContactService) SetStatus(ctx context.Context, id, status string) (*model.ContactMessage, error) {
	if m.setStatusFunc != nil {
		return m.setStatusFunc(ctx, id, status)
	}
	return &model.ContactMessage{ID: id, Status: status}, nil
}

func (m *mockContactService) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockContactService) SendTestEmail(ctx context.Context, to string) error {
	if m.testEmailFunc != nil {
		return m.testEmailFunc(ctx, to)
	}
	return nil
}

// ---------------------------------------------------------------------------
// AuthService のモック
// ---------------------------------------------------------------------------

type mockAuthService struct {
	signupFunc         func(ctx context.Context, in service.SignupInput) (*service.LoginResult, error)
	loginFunc          func(ctx context.Context, email, password string) (*service.LoginResult, error)
	meFunc             func(ctx context.Context, userID string) (*model.User, error)
	changePasswordFunc func(ctx context.Context, userID, current, next string) error
}

func (m *mockAuthService) Signup(ctx context.Context, in service.SignupInput) (*service.LoginResult, error) {
	if m.signupFunc != nil {
		return m.signupFunc(ctx, in)
	}
	return nil, service.ErrConflict
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*service.LoginResult, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, email, password)
	}
	return nil, service.ErrUnauthorized
}

func (m *mockAuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	if m.meFunc != nil {
		return m.meFunc(ctx, userID)
	}
	return nil, service.ErrUnauthorized
}

func (m *mockAuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if m.changePasswordFunc != nil {
		return m.changePasswordFunc(ctx, userID, current, next)
	}
	return nil
}

// ---------------------------------------------------------------------------
// AdminUserService のモック
// ---------------------------------------------------------------------------

type mockAdminUserService struct {
	listUsersFunc  func(ctx context.Context, page, limit int) (*model.Page[*model.User], error)
	getUserFunc    func(ctx context.Context, id string) (*model.User, error)
	updateUserFunc func(ctx context.Context, actorID, id string, in service.UserUpdate) (*model.User, error)
	deleteUserFunc func(ctx context.Context, actorID, id string) error
}

func (m *mockAdminUserService) ListUsers(ctx context.Context, page, limit int) (*model.Page[*model.User], error) {
	if m.listUsersFunc != nil {
		return m.listUsersFunc(ctx, page, limit)
	}
	return model.NewPage[*model.User](nil, 0, page, limit), nil
}

func (m *mockAdminUserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	if m.getUserFunc != nil {
		return m.getUserFunc(ctx, id)
	}
	return nil, service.ErrNotFound
}

func (m *mockAdminUserService) UpdateUser(ctx context.Context, actorID, id string, in service.UserUpdate) (*model.User, error) {
	if m.updateUserFunc != nil {
		return m.updateUserFunc(ctx, actorID, id, in)
	}
	return nil, service.ErrNotFound
}

func (m *mockAdminUserService) DeleteUser(ctx context.Context, actorID, id string) error {
	if m.deleteUserFunc != nil {
		return m.deleteUserFunc(ctx, actorID, id)
	}
	return nil
}
