package registration

// Catalog data the registration form renders. The lists are part of the
// product contract with the frontend; keep ordering stable.

var medicalSpecialties = []string{
	"Allergy and Immunology",
	"Anesthesiology",
	"Cardiothoracic Surgery",
	"Cardiology",
	"Child and Adolescent Psychiatry",
	"Dermatology",
	"Emergency Medicine",
	"Endocrinology",
	"Family Medicine",
	"Gastroenterology",
	"General Surgery",
	"General Practitioner",
	"Geriatric Psychiatry",
	"Geriatrics",
	"Gynecology",
	"Hematology",
	"Infectious Disease",
	"Internal Medicine",
	"Interventional Radiology",
	"Maternal-Fetal Medicine",
	"Medical Genetics",
	"Neonatology",
	"Nephrology",
	"Neurology",
	"Neurosurgery",
	"Nuclear Medicine",
	"Obstetrics",
	"Oncology",
	"Ophthalmology",
	"Orthopedic Surgery",
	"Otolaryngology",
	"Pain Management",
	"Pathology",
	"Pediatrics",
	"Pediatric Cardiology",
	"Pediatric Oncology",
	"Physical Medicine and Rehabilitation",
	"Plastic Surgery",
	"Preventive Medicine",
	"Psychiatry",
	"Pulmonology",
	"Radiology",
	"Reproductive Endocrinology and Infertility",
	"Rheumatology",
	"Sleep Medicine",
	"Sports Medicine",
	"Urology",
}

var languages = []string{
	"Hausa",
	"Igbo",
	"Yoruba",
	"Fulfulde",
	"Kanuri",
	"Ibibio",
	"Tiv",
	"Edo",
	"Nupe",
	"Gwari",
	"Ijaw",
	"Urhobo",
	"Efik",
	"Idoma",
	"Igala",
	"Ebira",
	"Berom",
	"Chokwe",
	"Mumuye",
	"Kambari",
	"Ukwuani",
	"Esan",
	"Isoko",
	"Etsako",
	"Okpe",
	"Itshekiri",
	"Kalabari",
	"Nembe",
	"Ogoni",
	"Ekpeye",
}

// MedicalSpecialties returns the selectable specialties, in display order.
func MedicalSpecialties() []string {
	return append([]string(nil), medicalSpecialties...)
}

// Languages returns the selectable languages, in display order.
func Languages() []string {
	return append([]string(nil), languages...)
}
