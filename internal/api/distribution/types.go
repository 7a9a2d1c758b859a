package distribution

// Release is a release record of a package.
type Release struct {
	ID int64 `json:"id"`
}

// Build is one uploaded artifact of a release.
type Build struct {
	ID   int64     `json:"id"`
	File BuildFile `json:"file"`
}

// BuildFile describes the uploaded file of a build.
type BuildFile struct {
	Filename string `json:"filename"`
}

type releaseResponse struct {
	Release *Release `json:"release"`
}

type buildsResponse struct {
	Builds struct {
		Data []*Build `json:"data"`
	} `json:"builds"`
}
