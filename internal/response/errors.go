package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrTeacherAccessOnly ErrCode = "TEACHER_ACCESS_ONLY"
	ErrAdminAccessOnly   ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Competition lifecycle ─────────────────────────────────────────
	ErrNotJoinable          ErrCode = "COMPETITION_NOT_JOINABLE"
	ErrNotAvailable         ErrCode = "COMPETITION_NOT_AVAILABLE"
	ErrAlreadyJoined        ErrCode = "ALREADY_JOINED"
	ErrNotJoined            ErrCode = "NOT_JOINED"
	ErrDuplicateSubmission  ErrCode = "DUPLICATE_SUBMISSION"
	ErrAlreadyDisqualified  ErrCode = "ALREADY_DISQUALIFIED"
	ErrAlreadyGraded        ErrCode = "ALREADY_GRADED"
	ErrNotCompetitionAuthor ErrCode = "NOT_COMPETITION_AUTHOR"
	ErrNoQuestions          ErrCode = "NO_QUESTIONS"
	ErrHasParticipants      ErrCode = "HAS_PARTICIPANTS"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
// Internal storage error text is never surfaced through these messages.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrTeacherAccessOnly:
		return "This resource is restricted to teachers."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Competition lifecycle ─────────────────────────────────────────
	case ErrNotJoinable:
		return "Competition not found or not available for joining."
	case ErrNotAvailable:
		return "This competition is not available at this time."
	case ErrAlreadyJoined:
		return "You have already joined this competition."
	case ErrNotJoined:
		return "You have not joined this competition."
	case ErrDuplicateSubmission:
		return "You have already submitted answers for this competition."
	case ErrAlreadyDisqualified:
		return "This student is already disqualified from this competition."
	case ErrAlreadyGraded:
		return "This submission has already been graded."
	case ErrNotCompetitionAuthor:
		return "You are not the creator of this competition."
	case ErrNoQuestions:
		return "This competition has no questions."
	case ErrHasParticipants:
		return "Competition has participants and has been archived instead of deleted."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
