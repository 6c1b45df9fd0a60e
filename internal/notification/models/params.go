package models

// Template parameters, one struct per email family.

type SignatureRequestParams struct {
	BeneficiaryFirstName string `json:"beneficiaryFirstName"`
	BeneficiaryLastName  string `json:"beneficiaryLastName"`
	BusinessName         string `json:"businessName"`
	MentorName           string `json:"mentorName"`
	SignatoryName        string `json:"signatoryName"`
	MagicLink            string `json:"magicLink"`
}

type AlreadySignedParams struct {
	ExistingSignatureName string `json:"existingSignatureName"`
	MissingSignatureName  string `json:"missingSignatureName"`
	BeneficiaryFirstName  string `json:"beneficiaryFirstName"`
	BeneficiaryLastName   string `json:"beneficiaryLastName"`
	MagicLink             string `json:"magicLink"`
}

type AgencyNotificationParams struct {
	AgencyName           string `json:"agencyName"`
	BusinessName         string `json:"businessName"`
	DateStart            string `json:"dateStart"`
	DateEnd              string `json:"dateEnd"`
	BeneficiaryFirstName string `json:"beneficiaryFirstName"`
	BeneficiaryLastName  string `json:"beneficiaryLastName"`
	MagicLink            string `json:"magicLink"`
}

type ReviewParams struct {
	BeneficiaryFirstName string `json:"beneficiaryFirstName"`
	BeneficiaryLastName  string `json:"beneficiaryLastName"`
	BusinessName         string `json:"businessName"`
	PossibleRoleAction   string `json:"possibleRoleAction"`
	MagicLink            string `json:"magicLink"`
}

type FinalValidationParams struct {
	BeneficiaryFirstName string `json:"beneficiaryFirstName"`
	BeneficiaryLastName  string `json:"beneficiaryLastName"`
	DateStart            string `json:"dateStart"`
	DateEnd              string `json:"dateEnd"`
	MentorName           string `json:"mentorName"`
	Schedule             string `json:"scheduleText"`
	BusinessName         string `json:"businessName"`
	ImmersionAddress     string `json:"immersionAddress"`
	ImmersionProfession  string `json:"immersionAppellationLabel"`
	Signature            string `json:"signature"`
	QuestionnaireURL     string `json:"questionnaireUrl"`
}

type RejectedParams struct {
	BeneficiaryFirstName string `json:"beneficiaryFirstName"`
	BeneficiaryLastName  string `json:"beneficiaryLastName"`
	BusinessName         string `json:"businessName"`
	Reason               string `json:"rejectionReason"`
	Signature            string `json:"signature"`
	AgencyName           string `json:"agency"`
	ImmersionProfession  string `json:"immersionProfession"`
}

type ModificationRequestParams struct {
	BeneficiaryFirstName string `json:"beneficiaryFirstName"`
	BeneficiaryLastName  string `json:"beneficiaryLastName"`
	BusinessName         string `json:"businessName"`
	Reason               string `json:"reason"`
	Signature            string `json:"signature"`
	AgencyName           string `json:"agency"`
	ImmersionProfession  string `json:"immersionAppellation"`
	MagicLink            string `json:"magicLink"`
}

type MagicLinkRenewalParams struct {
	MagicLink string `json:"magicLink"`
}

type EstablishmentCreatedParams struct {
	BusinessName     string `json:"businessName"`
	ContactFirstName string `json:"contactFirstName"`
	ContactLastName  string `json:"contactLastName"`
	BusinessAddress  string `json:"businessAddress"`
}

type EditFormEstablishmentLinkParams struct {
	BusinessName string `json:"businessName"`
	EditFrontURL string `json:"editFrontUrl"`
}

type ContactByEmailRequestParams struct {
	BusinessName                  string `json:"businessName"`
	ContactFirstName              string `json:"contactFirstName"`
	ContactLastName               string `json:"contactLastName"`
	JobLabel                      string `json:"jobLabel"`
	PotentialBeneficiaryFirstName string `json:"potentialBeneficiaryFirstName"`
	PotentialBeneficiaryLastName  string `json:"potentialBeneficiaryLastName"`
	PotentialBeneficiaryEmail     string `json:"potentialBeneficiaryEmail"`
	Message                       string `json:"message"`
}

// ContactInstructionsParams tells a candidate how to reach an establishment
// by phone or in person.
type ContactInstructionsParams struct {
	BusinessName                  string `json:"businessName"`
	BusinessAddress               string `json:"businessAddress,omitempty"`
	ContactFirstName              string `json:"contactFirstName"`
	ContactLastName               string `json:"contactLastName"`
	ContactPhone                  string `json:"contactPhone,omitempty"`
	PotentialBeneficiaryFirstName string `json:"potentialBeneficiaryFirstName"`
	PotentialBeneficiaryLastName  string `json:"potentialBeneficiaryLastName"`
}

type ShareConventionParams struct {
	AdditionalDetails string `json:"additionnalDetails,omitempty"`
	ConventionLink    string `json:"conventionLink"`
}

type AssessmentParams struct {
	MentorName                      string `json:"mentorName"`
	BeneficiaryFirstName            string `json:"beneficiaryFirstName"`
	BeneficiaryLastName             string `json:"beneficiaryLastName"`
	ImmersionAssessmentCreationLink string `json:"immersionAssessmentCreationLink"`
}

type AgencyActivatedParams struct {
	AgencyName    string `json:"agencyName"`
	AgencyLogoURL string `json:"agencyLogoUrl,omitempty"`
}
