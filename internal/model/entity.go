package model

// Entity is implemented by every cached collection element. ParentID is the
// owning record the collection is usually scoped by.
type Entity interface {
	EntityID() ID
	ParentID() ID
}

// Owned requests are stamped with the current user before being sent.
type Owned interface {
	SetOwner(userID ID)
}

type Establishment struct {
	ID         ID        `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	City       string    `json:"city"`
	PostalCode string    `json:"postalCode"`
	Country    string    `json:"country"`
	UserID     ID        `json:"userId"`
	CreatedAt  Timestamp `json:"createdAt"`
	UpdatedAt  Timestamp `json:"updatedAt"`
}

func (e Establishment) EntityID() ID { return e.ID }
func (e Establishment) ParentID() ID { return e.UserID }

type CreateEstablishmentRequest struct {
	Name       string `json:"name" validate:"required,max=255"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
	Country    string `json:"country" validate:"required"`
	UserID     ID     `json:"userId,omitempty"`
}

func (r *CreateEstablishmentRequest) SetOwner(userID ID) { r.UserID = userID }

type UpdateEstablishmentRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Address    *string `json:"address,omitempty"`
	City       *string `json:"city,omitempty"`
	PostalCode *string `json:"postalCode,omitempty" validate:"omitempty,max=20"`
	Country    *string `json:"country,omitempty"`
}

type Classroom struct {
	ID              ID        `json:"id"`
	Name            string    `json:"name"`
	Level           string    `json:"level"`
	Subject         string    `json:"subject"`
	EstablishmentID ID        `json:"establishmentId"`
	UserID          ID        `json:"userId"`
	AcademicYear    string    `json:"academicYear"`
	CreatedAt       Timestamp `json:"createdAt"`
	UpdatedAt       Timestamp `json:"updatedAt"`
}

func (c Classroom) EntityID() ID { return c.ID }
func (c Classroom) ParentID() ID { return c.EstablishmentID }

type CreateClassroomRequest struct {
	Name            string `json:"name" validate:"required,max=100"`
	Level           string `json:"level" validate:"required"`
	Subject         string `json:"subject" validate:"required"`
	EstablishmentID ID     `json:"establishmentId" validate:"required"`
	AcademicYear    string `json:"academicYear" validate:"required,academic_year"`
	UserID          ID     `json:"userId,omitempty"`
}

func (r *CreateClassroomRequest) SetOwner(userID ID) { r.UserID = userID }

type UpdateClassroomRequest struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Level           *string `json:"level,omitempty"`
	Subject         *string `json:"subject,omitempty"`
	EstablishmentID *ID     `json:"establishmentId,omitempty"`
	AcademicYear    *string `json:"academicYear,omitempty" validate:"omitempty,academic_year"`
}

type Student struct {
	ID             ID        `json:"id"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	DateOfBirth    Date      `json:"dateOfBirth"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	ParentName     string    `json:"parentName,omitempty"`
	ParentEmail    string    `json:"parentEmail,omitempty"`
	ParentPhone    string    `json:"parentPhone,omitempty"`
	ClassroomID    ID        `json:"classroomId"`
	EnrollmentDate Date      `json:"enrollmentDate"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      Timestamp `json:"createdAt"`
	UpdatedAt      Timestamp `json:"updatedAt"`
}

func (s Student) EntityID() ID { return s.ID }
func (s Student) ParentID() ID { return s.ClassroomID }

func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

type CreateStudentRequest struct {
	FirstName   string `json:"firstName" validate:"required,max=100"`
	LastName    string `json:"lastName" validate:"required,max=100"`
	DateOfBirth Date   `json:"dateOfBirth" validate:"required"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       string `json:"phone,omitempty"`
	ParentName  string `json:"parentName,omitempty"`
	ParentEmail string `json:"parentEmail,omitempty" validate:"omitempty,email"`
	ParentPhone string `json:"parentPhone,omitempty"`
	ClassroomID ID     `json:"classroomId" validate:"required"`
}

type UpdateStudentRequest struct {
	FirstName   *string `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName    *string `json:"lastName,omitempty" validate:"omitempty,min=1,max=100"`
	DateOfBirth *Date   `json:"dateOfBirth,omitempty"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty"`
	ParentName  *string `json:"parentName,omitempty"`
	ParentEmail *string `json:"parentEmail,omitempty" validate:"omitempty,email"`
	ParentPhone *string `json:"parentPhone,omitempty"`
	ClassroomID *ID     `json:"classroomId,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// Scope selects the collection a repository load fetches.
type Scope struct {
	ParentID ID
	Date     *Date
}
