package constants

const TestBaseRegistrationNumber = "TEST0001"
const TestMhrNumber = "100570"

const SearchComplete = "COMPLETED"
const SearchPending = "PENDING"
const SearchFailed = "FAILED"

// This is set during compilation. See build_and_package.sh in the ops repo.
var Version = "latest"
