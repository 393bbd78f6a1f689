package domain

// PrepareRequest describes a build context to assemble.
type PrepareRequest struct {
	Origin          string  `json:"origin"`
	AdditionalFiles Mapping `json:"additional_files,omitempty"`
	Patches         Mapping `json:"patches,omitempty"`
	// BuildDirectory is an optional, empty directory to assemble into. When
	// set, the directory belongs to the caller and is never removed.
	BuildDirectory string `json:"build_directory,omitempty"`
}

// BuildRequest describes a context to assemble and the image to build from it.
type BuildRequest struct {
	PrepareRequest
	ImageName  string `json:"image_name"`
	Dockerfile string `json:"dockerfile,omitempty"`
}

// InputFiles lists the local paths a preparation reads from.
type InputFiles struct {
	Origin          string   `json:"origin,omitempty"`
	AdditionalFiles []string `json:"additional_files"`
	Patches         []string `json:"patches"`
}

// DefaultDockerfile is used when a build request names no Dockerfile.
const DefaultDockerfile = "Dockerfile"
